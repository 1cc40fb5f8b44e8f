package terminal

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/console"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/shared"

	"github.com/gorilla/websocket"
)

// Values of the [Network] section.
func getWriteWait() time.Duration {
	return configuration.GetDuration("Network", "write_wait_timeout", 10*time.Second)
}

func getPongWait() time.Duration {
	return configuration.GetDuration("Network", "pong_timeout", 60*time.Second)
}

func getPingPeriod() time.Duration {
	return (getPongWait() * 9) / 10
}

func getMaxMessageSize() int64 {
	return int64(configuration.GetInt("Network", "max_message_size_kb", 16) * 1024)
}

func getOutputBuffer() int {
	return configuration.GetInt("Network", "output_buffer", 1024)
}

func getFlushInterval() time.Duration {
	return configuration.GetDuration("Network", "output_flush_interval", 20*time.Millisecond)
}

// Client is the console of one websocket session. Output is batched and sent
// by the write pump; typed keys arrive through the read pump.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	cancel    context.CancelFunc
	onInput   func()

	keys       chan byte
	pending    byte
	hasPending bool

	mu          sync.Mutex
	out         []byte
	outputLimit int
	flush       chan struct{}

	done      chan struct{}
	written   chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, sessionID string, cancel context.CancelFunc) *Client {
	return &Client{
		conn:        conn,
		sessionID:   sessionID,
		cancel:      cancel,
		keys:        make(chan byte, 256),
		outputLimit: getOutputBuffer(),
		flush:       make(chan struct{}, 1),
		done:        make(chan struct{}),
		written:     make(chan struct{}),
	}
}

// SessionID returns the id the client connected with.
func (c *Client) SessionID() string {
	return c.sessionID
}

// GetChar returns a pending key without blocking.
func (c *Client) GetChar() (byte, bool) {
	if c.hasPending {
		c.hasPending = false
		return c.pending, true
	}
	select {
	case b, ok := <-c.keys:
		return b, ok
	default:
		return 0, false
	}
}

// WaitKey blocks until a key is pending. It returns io.EOF once the socket is closed.
func (c *Client) WaitKey(ctx context.Context) error {
	if c.hasPending {
		return nil
	}
	select {
	case b, ok := <-c.keys:
		if !ok {
			return io.EOF
		}
		c.pending, c.hasPending = b, true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutChar queues one character for the next text message.
func (c *Client) PutChar(b byte) {
	c.mu.Lock()
	c.out = append(c.out, b)
	full := len(c.out) >= c.outputLimit
	c.mu.Unlock()

	if full {
		select {
		case c.flush <- struct{}{}:
		default:
		}
	}
}

// Close flushes pending output, sends a close frame and waits for the write pump.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	<-c.written
}

func (c *Client) writeMessage(msg shared.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(getWriteWait()))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) flushOutput() error {
	c.mu.Lock()
	data := c.out
	c.out = nil
	c.mu.Unlock()

	if len(data) == 0 {
		return nil
	}
	return c.writeMessage(shared.Message{Type: shared.MessageTypeText, Content: string(data)})
}

// readPump turns key messages into console input. It cancels the session when
// the socket closes.
func (c *Client) readPump() {
	defer func() {
		close(c.keys)
		c.cancel()
	}()

	c.conn.SetReadLimit(getMaxMessageSize())
	c.conn.SetReadDeadline(time.Now().Add(getPongWait()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(getPongWait()))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn(logger.AreaWebSocket, "session %s: unexpected close: %v", c.sessionID, err)
			} else {
				logger.Debug(logger.AreaWebSocket, "session %s: read ended: %v", c.sessionID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg shared.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn(logger.AreaWebSocket, "session %s: invalid message: %v", c.sessionID, err)
			continue
		}
		if msg.Type != shared.MessageTypeKey {
			logger.Debug(logger.AreaWebSocket, "session %s: ignoring message type %d", c.sessionID, msg.Type)
			continue
		}
		if c.onInput != nil {
			c.onInput()
		}

		for i := 0; i < len(msg.Content); i++ {
			ch := msg.Content[i]
			if ch > 127 {
				continue
			}
			select {
			case c.keys <- console.Translate(ch):
			case <-c.done:
				return
			}
		}
	}
}

// writePump sends batched output every flush interval, or sooner when the
// buffer fills, and keeps the connection alive with pings.
func (c *Client) writePump() {
	pingTicker := time.NewTicker(getPingPeriod())
	flushTicker := time.NewTicker(getFlushInterval())
	defer func() {
		pingTicker.Stop()
		flushTicker.Stop()
		c.conn.Close()
		close(c.written)
	}()

	for {
		select {
		case <-flushTicker.C:
			if err := c.flushOutput(); err != nil {
				logger.Debug(logger.AreaWebSocket, "session %s: write failed: %v", c.sessionID, err)
				return
			}
		case <-c.flush:
			if err := c.flushOutput(); err != nil {
				logger.Debug(logger.AreaWebSocket, "session %s: write failed: %v", c.sessionID, err)
				return
			}
		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(getWriteWait()))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug(logger.AreaWebSocket, "session %s: ping failed: %v", c.sessionID, err)
				return
			}
		case <-c.done:
			if err := c.flushOutput(); err == nil {
				c.conn.SetWriteDeadline(time.Now().Add(getWriteWait()))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			return
		}
	}
}
