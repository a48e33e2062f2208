package runtime_test

import (
	"encoding/json"
	"fmt"
	"slices"

	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
)

// lobby is a small deterministic logic exercising every engine path:
// membership, stream-driven randomness, logical time, per-viewer secrets,
// rejections and panics.
type lobbyState struct {
	owner   string
	members []string
	rolls   []int
	times   []int64
	secrets map[string]int
}

type lobbyView struct {
	Owner    string   `json:"owner"`
	Members  []string `json:"members"`
	Rolls    []int    `json:"rolls"`
	Times    []int64  `json:"times"`
	Secrets  int      `json:"secrets"`
	MySecret *int     `json:"mySecret,omitempty"`
}

type joinCmd struct{}

func (joinCmd) Method() string { return "join" }

type rollCmd struct {
	Sides int `json:"sides"`
}

func (rollCmd) Method() string { return "roll" }

type secretCmd struct{}

func (secretCmd) Method() string { return "secret" }

type noopCmd struct {
	Reason string `json:"reason"`
}

func (noopCmd) Method() string { return "noop" }

type boomCmd struct{}

func (boomCmd) Method() string { return "boom" }

type lobby struct{}

var _ contract.Logic[*lobbyState] = lobby{}

func (lobby) Create(user domain.User, _ *domain.Context, args []byte) (*lobbyState, error) {
	var opts struct {
		Fail bool `json:"fail"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &opts); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err)
		}
	}
	if opts.Fail {
		return nil, fmt.Errorf("%w: fail requested", errors.ErrMalformedArgs)
	}
	return &lobbyState{owner: user.ID, secrets: map[string]int{}}, nil
}

func (lobby) Decode(method string, args []byte) (domain.Command, error) {
	var cmd domain.Command
	switch method {
	case "join":
		cmd = &joinCmd{}
	case "roll":
		cmd = &rollCmd{}
	case "secret":
		cmd = &secretCmd{}
	case "noop":
		cmd = &noopCmd{}
	case "boom":
		cmd = &boomCmd{}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, method)
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err)
		}
	}
	if roll, ok := cmd.(*rollCmd); ok && roll.Sides <= 0 {
		return nil, fmt.Errorf("%w: sides must be positive", errors.ErrMalformedArgs)
	}
	return cmd, nil
}

func (lobby) Execute(state *lobbyState, user domain.User, ctx *domain.Context, cmd domain.Command) domain.Result {
	switch c := cmd.(type) {
	case *joinCmd:
		if slices.Contains(state.members, user.ID) {
			return domain.Unmodified("already a member")
		}
		state.members = append(state.members, user.ID)
	case *rollCmd:
		state.rolls = append(state.rolls, ctx.RandIntn(c.Sides))
		state.times = append(state.times, ctx.Time().UnixMilli())
	case *secretCmd:
		state.secrets[user.ID] = ctx.RandIntn(1_000_000)
	case *noopCmd:
		return domain.Unmodified(c.Reason)
	case *boomCmd:
		panic("boom")
	}
	return domain.Modified()
}

func (lobby) Project(state *lobbyState, user domain.User) any {
	view := lobbyView{
		Owner:   state.owner,
		Members: slices.Clone(state.members),
		Rolls:   slices.Clone(state.rolls),
		Times:   slices.Clone(state.times),
		Secrets: len(state.secrets),
	}
	if secret, ok := state.secrets[user.ID]; ok {
		view.MySecret = &secret
	}
	return view
}
