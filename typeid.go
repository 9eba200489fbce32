package capsule

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
)

// TypeId is a copyable, totally-ordered, equality-comparable token
// naming a producible type. Two strategies compute it: the in-process
// strategy keys purely on the runtime type's qualified name, and the
// ABI-stable strategy additionally folds in a structural hash of the
// type's public field layout so two distinct plugin-compiled types that
// happen to share an outer name never collide.
type TypeId struct {
	name string
	hash uint64
}

// Less gives TypeId a total order, used to keep the producer table
// sorted (spec invariant I1).
func (id TypeId) Less(other TypeId) bool {
	if id.name != other.name {
		return id.name < other.name
	}
	return id.hash < other.hash
}

func (id TypeId) String() string {
	if id.hash == 0 {
		return id.name
	}
	return fmt.Sprintf("%s#%x", id.name, id.hash)
}

// identityStrategy computes a TypeId from the registry key type (the
// Registered[T] marker) and the produced type T itself. Two
// implementations are provided: inProcessIdentity (fast, intrinsic
// runtime identity) and abiStableIdentity (slower, safe across
// separately compiled plugins — see abi.go).
type identityStrategy interface {
	identify(key, produced reflect.Type) TypeId
}

type inProcessIdentity struct{}

func (inProcessIdentity) identify(key, _ reflect.Type) TypeId {
	return TypeId{name: key.String()}
}

// abiStableIdentity computes identity from (type name, package path,
// module version, structural hash of field-name layout) rather than
// the runtime's intrinsic type pointer, so that a plugin compiled as a
// separate binary and the host agree on the id for "the same" type.
type abiStableIdentity struct {
	moduleVersion string
}

func (s abiStableIdentity) identify(key, produced reflect.Type) TypeId {
	name := key.PkgPath() + "." + key.Name()
	if name == "." {
		name = key.String()
	}
	name = s.moduleVersion + "/" + name
	return TypeId{name: name, hash: structuralHash(produced, 8)}
}

// structuralHash recursively hashes the sequence of exported field
// names of t (and, for struct-typed fields, their own field names) so
// that two differently-named wrappers around different underlying
// types receive distinct ids even when their outer name agrees. Depth
// is capped to guarantee termination on recursive/self-referential
// layouts.
func structuralHash(t reflect.Type, depth int) uint64 {
	h := fnv.New64a()
	hashType(h, t, depth)
	return h.Sum64()
}

func hashType(h interface{ Write([]byte) (int, error) }, t reflect.Type, depth int) {
	if t == nil {
		return
	}
	write := func(s string) { _, _ = h.Write([]byte(s)) }
	write(t.Kind().String())
	if depth <= 0 {
		return
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
		hashType(h, t.Elem(), depth-1)
	case reflect.Map:
		hashType(h, t.Key(), depth-1)
		hashType(h, t.Elem(), depth-1)
	case reflect.Struct:
		names := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			names = append(names, f.Name)
		}
		sort.Strings(names)
		for _, n := range names {
			write(n)
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			hashType(h, f.Type, depth-1)
		}
	}
}

// registeredTypeOf returns the reflect.Type of the Registered[T]
// marker, used uniformly as the registry key for "a producer of T".
func registeredTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*Registered[T])(nil)).Elem()
}

// idOf computes the TypeId under which producers of T are stored,
// using the given collection's identity strategy.
func idOf[T any](strategy identityStrategy) TypeId {
	var zero T
	return strategy.identify(registeredTypeOf[T](), reflect.TypeOf(&zero).Elem())
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	if t.Name() == "" {
		return t.String()
	}
	return t.String()
}
