package capsule

// Registered is a zero-size tag type used only as a registry key. The
// registry always stores producers under the identity of Registered[T]
// (idOf[T] computes it from registeredTypeOf[T]), never under the
// identity of T itself, so that "what produces a T" stays a distinct
// namespace from "a T used as plain data" — a TypeId lookup for a
// producer is never ambiguous with one for a value.
type Registered[T any] struct{}
