package contract

import "game-lab/domain"

// Logic is the pluggable domain logic hosted by the engine.
//
// Implementations must be deterministic given identical (state, user, context, command)
// and Project must not mutate the state. Decode maps a method name and its raw
// arguments onto the logic's closed set of commands; it returns errors.ErrUnknownMethod
// or errors.ErrMalformedArgs for caller mistakes.
type Logic[S any] interface {
	Create(user domain.User, ctx *domain.Context, args []byte) (S, error)
	Decode(method string, args []byte) (domain.Command, error)
	Execute(state S, user domain.User, ctx *domain.Context, cmd domain.Command) domain.Result
	Project(state S, user domain.User) any
}
