// Package rpc implements the remote workspace service over a WebSocket
// connection carrying CBOR-encoded request/response envelopes.
//
// Each request carries a random id; responses are correlated back to their
// request through a per-id channel, so calls from multiple goroutines can
// share one connection.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/canopyreview/canopy/internal/ids"
)

// DefaultTimeout bounds how long a call waits for its response after the
// request was written.
const DefaultTimeout = 10 * time.Second

var (
	// ErrClosed indicates the connection was closed before or during a call.
	ErrClosed = errors.New("rpc: connection closed")
	// ErrTimeout indicates no response arrived within the client timeout.
	ErrTimeout = errors.New("rpc: request timed out")
)

// ServiceError is an error the backend returned for a request.
type ServiceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("rpc: service error %d: %s", e.Code, e.Message)
}

type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result cbor.RawMessage `json:"result,omitempty"`
	Error  *ServiceError   `json:"error,omitempty"`
}

// DefaultDialer is the dialer used by Dial. It requests the cbor
// subprotocol and enables per-message compression.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"cbor"},
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-call response timeout. Zero disables it;
// use a context deadline instead.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for transport diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client is a connection to the workspace backend. It implements
// remote.Service; see service.go for the method mapping.
type Client struct {
	conn    *gorilla.Conn
	writeMu sync.Mutex

	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	pending map[string]chan response

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to the backend at url (e.g. "ws://127.0.0.1:7317/rpc").
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	conn, res, err := DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", url, err)
	}
	defer res.Body.Close()

	c := &Client{
		conn:    conn,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
		pending: make(map[string]chan response),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
	return c, nil
}

// Close sends a close message and tears down the connection. Pending calls
// fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)

		c.writeMu.Lock()
		writeErr := c.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		if writeErr != nil {
			c.logger.Debug().Err(writeErr).Msg("write close message")
		}

		err = c.conn.Close()
		c.failPending()
	})
	return err
}

// call performs one request/response round trip. A nil dest discards the
// result payload.
func (c *Client) call(ctx context.Context, method string, params, dest any) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := ids.GenerateWithTimestamp(method, time.Now(), 16)
	ch := c.register(id)
	defer c.unregister(id)

	if err := c.write(request{ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("rpc: write %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	case <-c.closed:
		return ErrClosed
	case res, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if res.Error != nil {
			return res.Error
		}
		if dest == nil || len(res.Result) == 0 {
			return nil
		}
		if err := cbor.Unmarshal(res.Result, dest); err != nil {
			return fmt.Errorf("rpc: decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) write(req request) error {
	data, err := cbor.Marshal(req)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(gorilla.BinaryMessage, data)
}

func (c *Client) register(id string) chan response {
	ch := make(chan response, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) readLoop() {
	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			// Any close frame is terminal, including a normal close: the
			// connection returns the same error forever after.
			var closeErr *gorilla.CloseError
			if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.As(err, &closeErr) {
				c.Close()
				return
			}
			c.logger.Error().Err(err).Msg("read message")
			continue
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var res response
	if err := cbor.Unmarshal(data, &res); err != nil {
		c.logger.Error().Err(err).Msg("decode response envelope")
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[res.ID]
	c.mu.Unlock()
	if !ok {
		c.logger.Debug().Str("id", res.ID).Msg("response for unknown request id")
		return
	}
	ch <- res
}
