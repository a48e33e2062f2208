// Package projection defines the frames pushed to connections and
// the client-side timeline rebuilt from them.
package projection

import (
	"encoding/json"
	"fmt"
)

// Frame is one per-user push: the sanitized state and the responses
// buffered for that user since the last tick.
type Frame struct {
	State     json.RawMessage    `json:"state"`
	Responses map[string]*string `json:"responses"`
}

// ErrorFrame answers a caller error on the connection that sent the command.
type ErrorFrame struct {
	Error FrameError `json:"error"`
}

type FrameError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// EncodeFrame renders a projection and its responses. A nil response set
// is encoded as an empty object.
func EncodeFrame(state any, responses map[string]*string) ([]byte, error) {
	rawState, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode projection: %w", err)
	}
	if responses == nil {
		responses = map[string]*string{}
	}
	return json.Marshal(Frame{State: rawState, Responses: responses})
}

func EncodeError(code, message, correlationID string) ([]byte, error) {
	return json.Marshal(ErrorFrame{Error: FrameError{Code: code, Message: message, CorrelationID: correlationID}})
}

// Envelope is the union of frames a client can receive.
type Envelope struct {
	State     json.RawMessage    `json:"state,omitempty"`
	Responses map[string]*string `json:"responses,omitempty"`
	Error     *FrameError        `json:"error,omitempty"`
}

func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode frame: %w", err)
	}
	return env, nil
}

// Request is one command frame sent by a client after authentication.
type Request struct {
	Method        string          `json:"method" validate:"required"`
	CorrelationID string          `json:"correlationId" validate:"required"`
	Args          json.RawMessage `json:"args,omitempty"`
}

func EncodeRequest(method, correlationID string, args any) ([]byte, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	return json.Marshal(Request{Method: method, CorrelationID: correlationID, Args: raw})
}
