package domain

// Command is one member of a domain logic's closed set of typed commands.
// Decoding happens once at the boundary; execution matches on the concrete type.
type Command interface {
	Method() string
}
