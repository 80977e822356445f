package adapters

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the bridge.
	writeWait = 10 * time.Second

	// Default upper bound for connection attempts.
	defaultDialTimeout = 30 * time.Second
)

// WebSocketOptions configures a WebSocketTransportAdapter.
type WebSocketOptions struct {
	// Header is sent with the handshake request.
	Header http.Header
	// DialTimeout bounds the total time spent retrying the handshake.
	DialTimeout time.Duration
	// Service prefixes callback identifiers, the way Cordova does.
	Service string
	Logger  LoggerAdapter
}

// WebSocketTransportAdapter sends commands to a bridge host over a websocket
// connection and routes result frames back to their handlers.
//
// A call turns streaming once a result arrives with KeepCallback set. Results
// of streaming calls run in arrival order on a dedicated delivery goroutine,
// so a streaming handler may block, or issue further commands and wait for
// them, without stalling the connection. Results of one-shot calls run on the
// read goroutine and their handlers must not block.
type WebSocketTransportAdapter struct {
	conn    *websocket.Conn
	service string
	logger  LoggerAdapter

	mu           sync.Mutex
	pending      map[string]*wsCall
	closed       bool
	stream       []delivery
	streamReady  *sync.Cond
	streamClosed bool

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

type wsCall struct {
	handler   ResultHandler
	streaming bool
}

type delivery struct {
	handler ResultHandler
	result  Result
}

var _ TransportAdapter = (*WebSocketTransportAdapter)(nil)

// DialWebSocketTransport connects to the bridge host at url, retrying with
// exponential backoff until opts.DialTimeout elapses or ctx is done.
func DialWebSocketTransport(ctx context.Context, url string, opts WebSocketOptions) (*WebSocketTransportAdapter, error) {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.Service == "" {
		opts.Service = "NotificarePush"
	}
	if opts.Logger == nil {
		opts.Logger = NewPrintLoggerAdapter(LogLevelWarn)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = opts.DialTimeout

	var conn *websocket.Conn
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, opts.Header)
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(fmt.Errorf("bridge refused handshake with status %d: %w", resp.StatusCode, err))
			}
			opts.Logger.Debug("Bridge connection attempt %d failed: %v", attempt, err)
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bridge: %w", err)
	}

	return NewWebSocketTransportAdapter(conn, opts), nil
}

// NewWebSocketTransportAdapter wraps an established connection and starts
// reading result frames from it.
func NewWebSocketTransportAdapter(conn *websocket.Conn, opts WebSocketOptions) *WebSocketTransportAdapter {
	if opts.Service == "" {
		opts.Service = "NotificarePush"
	}
	if opts.Logger == nil {
		opts.Logger = NewPrintLoggerAdapter(LogLevelWarn)
	}

	t := &WebSocketTransportAdapter{
		conn:    conn,
		service: opts.Service,
		logger:  opts.Logger,
		pending: make(map[string]*wsCall),
		done:    make(chan struct{}),
	}
	t.streamReady = sync.NewCond(&t.mu)
	go t.readLoop()
	go t.deliverLoop()
	return t
}

// Exec sends a command frame and registers handler for its results.
func (t *WebSocketTransportAdapter) Exec(ctx context.Context, action string, args []any, handler ResultHandler) (func(), error) {
	if args == nil {
		args = []any{}
	}
	id := t.service + uuid.NewString()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	t.pending[id] = &wsCall{handler: handler}
	t.mu.Unlock()

	data, err := json.Marshal(CommandFrame{CallbackID: id, Action: action, Args: args})
	if err != nil {
		t.forget(id)
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	t.writeMu.Lock()
	_ = t.conn.SetWriteDeadline(deadline)
	err = t.conn.WriteMessage(websocket.TextMessage, data)
	t.writeMu.Unlock()
	if err != nil {
		t.forget(id)
		return nil, fmt.Errorf("failed to send command %s: %w", action, err)
	}
	return func() { t.forget(id) }, nil
}

func (t *WebSocketTransportAdapter) forget(id string) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// Pending returns the number of calls still waiting for results.
func (t *WebSocketTransportAdapter) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *WebSocketTransportAdapter) readLoop() {
	defer t.shutdown()

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Warn("Bridge connection lost: %v", err)
			}
			return
		}

		var frame ResultFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.logger.Error("Discarding malformed result frame: %v", err)
			continue
		}

		t.mu.Lock()
		call, ok := t.pending[frame.CallbackID]
		if ok {
			if frame.KeepCallback {
				call.streaming = true
			} else {
				delete(t.pending, frame.CallbackID)
			}
			if call.streaming {
				t.push(call.handler, frame.Result)
			}
		}
		t.mu.Unlock()

		if !ok {
			t.logger.Debug("No handler for callback %s", frame.CallbackID)
			continue
		}
		if !call.streaming {
			call.handler(frame.Result)
		}
	}
}

// push queues a streaming result. t.mu must be held.
func (t *WebSocketTransportAdapter) push(handler ResultHandler, result Result) {
	t.stream = append(t.stream, delivery{handler: handler, result: result})
	t.streamReady.Signal()
}

// deliverLoop runs streaming handlers in arrival order until the transport
// has shut down and the queue is drained.
func (t *WebSocketTransportAdapter) deliverLoop() {
	for {
		t.mu.Lock()
		for len(t.stream) == 0 && !t.streamClosed {
			t.streamReady.Wait()
		}
		if len(t.stream) == 0 {
			t.mu.Unlock()
			return
		}
		d := t.stream[0]
		t.stream[0] = delivery{}
		t.stream = t.stream[1:]
		t.mu.Unlock()

		d.handler(d.result)
	}
}

// shutdown fails every pending handler. It runs once the read loop stops and
// does not wait for queued streaming results, which may still be running.
func (t *WebSocketTransportAdapter) shutdown() {
	t.mu.Lock()
	t.closed = true
	pending := t.pending
	t.pending = make(map[string]*wsCall)
	var oneShot []ResultHandler
	for _, call := range pending {
		if call.streaming {
			t.push(call.handler, closedResult())
		} else {
			oneShot = append(oneShot, call.handler)
		}
	}
	t.streamClosed = true
	t.streamReady.Broadcast()
	t.mu.Unlock()

	for _, handler := range oneShot {
		handler(closedResult())
	}
	t.closeOnce.Do(func() {
		_ = t.conn.Close()
	})
	close(t.done)
}

// Done is closed after the connection has gone away and pending handlers
// have been notified. Streaming handlers may still be draining.
func (t *WebSocketTransportAdapter) Done() <-chan struct{} {
	return t.done
}

// Close sends a close frame and waits for the read loop to finish. Calling
// Close on a transport that already went away is a no-op.
func (t *WebSocketTransportAdapter) Close() error {
	select {
	case <-t.done:
		return nil
	default:
	}

	t.writeMu.Lock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()

	t.closeOnce.Do(func() {
		_ = t.conn.Close()
	})
	<-t.done
	return nil
}
