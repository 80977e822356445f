package pushbridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tap30/pushbridge-go/adapters"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum command frame size allowed from peer.
	maxMessageSize = 64 * 1024
)

// BridgeServer exposes a Plugin to hosts connecting over websocket. Each
// command frame is executed in its own goroutine and answered with result
// frames carrying the same callback ID.
type BridgeServer struct {
	plugin   *Plugin
	logger   LoggerAdapter
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*bridgeConn]struct{}
	wg    sync.WaitGroup
}

// NewBridgeServer creates a websocket handler for plugin.
func NewBridgeServer(plugin *Plugin, logger LoggerAdapter) *BridgeServer {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &BridgeServer{
		plugin: plugin,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: make(map[*bridgeConn]struct{}),
	}
}

// ServeHTTP upgrades the request and serves commands until the peer leaves.
func (s *BridgeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Bridge handshake failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &bridgeConn{
		conn:   ws,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: s.logger,
	}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("Bridge host connected from %s", r.RemoteAddr)

	go c.pingLoop()
	s.readLoop(ctx, c)

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.logger.Info("Bridge host %s disconnected", r.RemoteAddr)
}

func (s *BridgeServer) readLoop(ctx context.Context, c *bridgeConn) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Bridge read error: %v", err)
			}
			return
		}

		var frame adapters.CommandFrame
		if err := adapters.Unmarshal(data, &frame); err != nil {
			s.logger.Error("Discarding malformed command frame: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.plugin.Execute(ctx, frame.Action, Args(frame.Args), c.callback(frame.CallbackID))
		}()
	}
}

// Connections returns the number of connected hosts.
func (s *BridgeServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close disconnects every host and waits for running commands to finish.
func (s *BridgeServer) Close() error {
	s.mu.Lock()
	conns := make([]*bridgeConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	s.wg.Wait()
	return nil
}

// bridgeConn is one host connection. Writes are synchronous so a callback
// knows whether its frame actually left.
type bridgeConn struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	logger LoggerAdapter

	writeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

func (c *bridgeConn) callback(id string) CallbackContext {
	return CallbackFunc(func(result PluginResult) error {
		encoded, err := adapters.EncodeResult(result)
		if err != nil {
			return err
		}
		data, err := adapters.Marshal(adapters.ResultFrame{CallbackID: id, Result: encoded})
		if err != nil {
			return err
		}
		return c.write(websocket.TextMessage, data)
	})
}

func (c *bridgeConn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrTransportClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug("Bridge write failed: %v", err)
		return ErrTransportClosed
	}
	return nil
}

func (c *bridgeConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *bridgeConn) close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.done)
	_ = c.conn.Close()
}
