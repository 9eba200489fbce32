package capsule

import (
	"fmt"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeMissingDependency indicates a registered producer's declared
	// dependency is absent from the final merged registry.
	CodeMissingDependency = "MISSING_DEPENDENCY"

	// CodeCyclicDependency indicates the producer graph contains a cycle.
	CodeCyclicDependency = "CYCLIC_DEPENDENCY"

	// CodePrecondition indicates a programmer error: resolving an
	// unregistered type through resolve_unchecked, or a type mismatch
	// inside the trampoline that should have been prevented by the
	// validator.
	CodePrecondition = "PRECONDITION_VIOLATION"
)

// BuildError is returned by Collection.Build / BuildFactory when the
// dependency graph cannot be satisfied. It wraps *errs.Error so callers
// who never import go-utils/errs can still use errors.As / errors.Is.
type BuildError = errs.Error

// MissingDependencyError reports a dependency that no producer in the
// collection (or its ancestors) satisfies.
func MissingDependencyError(name string, id TypeId) *BuildError {
	return errs.NewError(
		CodeMissingDependency,
		fmt.Sprintf("missing dependency: %s", name),
		nil,
	).WithContext("type", name).
		WithContext("id", id.String()).(*errs.Error)
}

// CyclicDependencyError reports a cycle found by the validator. message
// is the chain "A -> B -> ... -> A" of type names participating in the
// cycle, as produced by the validator's DFS stack walk.
func CyclicDependencyError(message string) *BuildError {
	return errs.NewError(
		CodeCyclicDependency,
		fmt.Sprintf("cyclic dependency: %s", message),
		nil,
	).WithContext("cycle", message).(*errs.Error)
}

// PreconditionViolation is the panic value raised by ResolveUnchecked
// when its Resolvable's declared dependency was not in fact registered,
// or by an UntypedFn trampoline whose stored TypeId does not match the
// type the caller requested. Both indicate a bug in how the registry
// was assembled rather than a condition callers should recover from in
// the ordinary control-flow sense — but the type is still named (not a
// bare string) so test code can recover() and assert on it.
type PreconditionViolation struct {
	TypeName string
	Message  string
}

func (p *PreconditionViolation) Error() string {
	return fmt.Sprintf("%s: %s", p.TypeName, p.Message)
}

func panicPrecondition(typeName, message string) {
	panic(&PreconditionViolation{TypeName: typeName, Message: message})
}
