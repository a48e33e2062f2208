// Package client talks to a game-lab server the way a browser would: anonymous
// login, room creation, then one WebSocket per room.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"game-lab/domain"
	"game-lab/errors"
	"game-lab/projection"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ServerError is an error frame or error body sent by the server.
// It unwraps to the matching sentinel of the errors package.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServerError) Unwrap() error {
	return errors.FromCode(e.Code)
}

type outcome struct {
	reason *string
	err    error
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	user    domain.User

	conn     *websocket.Conn
	writeMu  sync.Mutex
	timeline *projection.Timeline
	states   chan json.RawMessage

	mu      sync.Mutex
	pending map[string]chan outcome
	done    chan struct{}
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		pending: make(map[string]chan outcome),
		states:  make(chan json.RawMessage, 64),
		done:    make(chan struct{}),
	}
}

// WithSession reuses a token obtained by another client, e.g. a second tab.
func (c *Client) WithSession(token string, user domain.User) *Client {
	c.token = token
	c.user = user
	return c
}

func (c *Client) User() domain.User {
	return c.user
}

func (c *Client) Token() string {
	return c.token
}

// LoginAnonymous obtains a guest token and keeps it for later calls.
func (c *Client) LoginAnonymous(ctx context.Context) (domain.User, error) {
	var body struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}
	if err := c.post(ctx, "/login/anonymous", nil, &body); err != nil {
		return domain.User{}, err
	}
	c.token = body.Token
	c.user = domain.User{ID: body.UserID, Name: body.Name}
	return c.user, nil
}

// CreateRoom creates a room with args as creation arguments (nil for none).
func (c *Client) CreateRoom(ctx context.Context, args any) (domain.RoomID, error) {
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := c.post(ctx, "/rooms", args, &body); err != nil {
		return "", err
	}
	return domain.RoomID(body.RoomID), nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		var failure struct {
			Error projection.FrameError `json:"error"`
		}
		if err := json.NewDecoder(response.Body).Decode(&failure); err != nil {
			return fmt.Errorf("%s: %s", path, response.Status)
		}
		return &ServerError{Code: failure.Error.Code, Message: failure.Error.Message}
	}
	return json.NewDecoder(response.Body).Decode(out)
}

// Connect opens the room socket, authenticates and waits for the first frame.
func (c *Client) Connect(ctx context.Context, roomID domain.RoomID) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	endpoint.Scheme = strings.Replace(endpoint.Scheme, "http", "ws", 1)
	endpoint.Path = fmt.Sprintf("/rooms/%s/ws", url.PathEscape(roomID.String()))

	conn, response, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if response != nil && response.Body != nil {
		_ = response.Body.Close()
	}
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(c.token)); err != nil {
		_ = conn.Close()
		return err
	}

	_, first, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return err
	}
	env, err := projection.DecodeEnvelope(first)
	if err != nil {
		_ = conn.Close()
		return err
	}
	if env.Error != nil {
		_ = conn.Close()
		return &ServerError{Code: env.Error.Code, Message: env.Error.Message}
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.done = done
	c.mu.Unlock()
	c.conn = conn
	c.timeline = projection.NewTimeline(c.user.ID)
	c.apply(env)
	go c.readLoop(conn, done)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := projection.DecodeEnvelope(payload)
		if err != nil {
			continue
		}
		c.apply(env)
	}
}

func (c *Client) apply(env projection.Envelope) {
	if env.Error != nil {
		c.resolve(env.Error.CorrelationID, outcome{err: &ServerError{Code: env.Error.Code, Message: env.Error.Message}})
		return
	}
	for _, response := range c.timeline.Consume(env) {
		c.resolve(response.CorrelationID, outcome{reason: response.Reason})
	}
	if env.State != nil {
		select {
		case c.states <- env.State:
		default:
		}
	}
}

func (c *Client) resolve(correlationID string, o outcome) {
	c.mu.Lock()
	waiter, ok := c.pending[correlationID]
	delete(c.pending, correlationID)
	c.mu.Unlock()
	if ok {
		waiter <- o
	}
}

// Send issues a command and waits for its response. The returned string is the
// rejection reason, empty when the command was applied or rejected silently.
func (c *Client) Send(ctx context.Context, method string, args any) (string, error) {
	if c.conn == nil {
		return "", fmt.Errorf("not connected")
	}
	correlationID := uuid.NewString()
	frame, err := projection.EncodeRequest(method, correlationID, args)
	if err != nil {
		return "", err
	}

	waiter := make(chan outcome, 1)
	c.mu.Lock()
	c.pending[correlationID] = waiter
	done := c.done
	c.mu.Unlock()

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.resolve(correlationID, outcome{})
		return "", err
	}

	select {
	case o := <-waiter:
		if o.err != nil {
			return "", o.err
		}
		if o.reason == nil {
			return "", nil
		}
		return *o.reason, nil
	case <-done:
		return "", errors.ErrSinkClosed
	case <-ctx.Done():
		c.resolve(correlationID, outcome{})
		return "", ctx.Err()
	}
}

// States delivers every projected state received. Slow readers miss intermediate states.
func (c *Client) States() <-chan json.RawMessage {
	return c.states
}

// Timeline exposes the local view rebuilt from the frames received so far.
func (c *Client) Timeline() *projection.Timeline {
	return c.timeline
}

// Done is closed when the current socket is gone. A new Connect replaces it.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}
