package poker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"game-lab/domain"
	"game-lab/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	MethodJoinGame   = "joinGame"
	MethodJoin       = "join"
	MethodStartGame  = "startGame"
	MethodStartRound = "startRound"
	MethodCall       = "call"
	MethodRaise      = "raise"
	MethodFold       = "fold"
)

type CreateGame struct{}

type JoinGame struct{}

func (JoinGame) Method() string { return MethodJoinGame }

type StartGame struct {
	StartingBlind          int `json:"startingBlind" validate:"gt=0"`
	StartingChipsPerPlayer int `json:"startingChipsPerPlayer" validate:"gt=0"`
}

func (StartGame) Method() string { return MethodStartGame }

type StartRound struct{}

func (StartRound) Method() string { return MethodStartRound }

type Call struct{}

func (Call) Method() string { return MethodCall }

type Raise struct {
	RaiseAmount int `json:"raiseAmount" validate:"gt=0"`
}

func (Raise) Method() string { return MethodRaise }

type Fold struct{}

func (Fold) Method() string { return MethodFold }

// Decode maps a method name onto the closed set of poker commands.
func Decode(method string, args []byte) (domain.Command, error) {
	var cmd domain.Command
	switch method {
	case MethodJoinGame, MethodJoin:
		cmd = &JoinGame{}
	case MethodStartGame:
		cmd = &StartGame{}
	case MethodStartRound:
		cmd = &StartRound{}
	case MethodCall:
		cmd = &Call{}
	case MethodRaise:
		cmd = &Raise{}
	case MethodFold:
		cmd = &Fold{}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, method)
	}
	if err := unmarshalArgs(args, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// unmarshalArgs accepts missing or null arguments as an empty object.
func unmarshalArgs(args []byte, target any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, target); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err)
		}
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err)
	}
	return nil
}
