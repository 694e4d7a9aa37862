package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/stonify5/gomoku/internal/game"
)

const (
	WebSocketPingType = "ping"
	WebSocketPongType = "pong"
)

// Options tunes per-connection behavior.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MessageRate    float64
	MessageBurst   int
	MaxMessageSize int64
	SendBuffer     int
}

func DefaultOptions() Options {
	return Options{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   30 * time.Second,
		MessageRate:    10,
		MessageBurst:   20,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

// frame is an inbound text message: either a game envelope or the
// application-level keepalive {"type":"ping"}.
type frame struct {
	Type string `json:"type,omitempty"`
	game.Envelope
}

// Client is one websocket connection bound to the hub.
type Client struct {
	id        game.ConnID
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	limiter   *rate.Limiter
	opts      Options
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, opts Options) *Client {
	return &Client{
		id:      game.ConnID(uuid.NewString()),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst),
		opts:    opts,
	}
}

func (c *Client) ID() game.ConnID {
	return c.id
}

// readPump forwards envelopes to the hub until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.extendDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Info().Str("conn", string(c.id)).Msg("connection timed out")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				log.Warn().Str("conn", string(c.id)).Err(err).Msg("error reading from websocket")
			default:
				log.Debug().Str("conn", string(c.id)).Err(err).Msg("connection closed")
			}
			return
		}
		c.extendDeadline()

		// A bare pong answers our own application ping; not a game event.
		if string(msg) == WebSocketPongType {
			continue
		}

		var f frame
		parseErr := json.Unmarshal(msg, &f)
		if parseErr == nil && f.Type == WebSocketPingType {
			c.trySend([]byte(`{"type":"` + WebSocketPongType + `"}`))
			continue
		}
		if !c.limiter.Allow() {
			log.Warn().Str("conn", string(c.id)).Str("event", f.Event).Msg("rate limit exceeded, message dropped")
			continue
		}
		// Rejections travel through the hub so they stay ordered behind
		// replies to earlier events.
		in := inbound{client: c, env: f.Envelope}
		if parseErr != nil {
			log.Debug().Str("conn", string(c.id)).Err(parseErr).Msg("unparseable message")
			in = inbound{client: c, err: fmt.Errorf("%w: %v", game.ErrBadPayload, parseErr)}
		}
		if !c.hub.submit(in) {
			return
		}
	}
}

// writePump drains the send queue and keeps the connection alive with
// protocol pings. It owns closing the underlying connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Str("conn", string(c.id)).Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Str("conn", string(c.id)).Err(err).Msg("ping failed")
				return
			}
		}
	}
}

func (c *Client) extendDeadline() {
	c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
}

// trySend never blocks. A client whose queue is full is too slow to keep
// and gets disconnected.
func (c *Client) trySend(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		log.Warn().Str("conn", string(c.id)).Msg("send buffer full, closing connection")
		c.close()
		return false
	}
}

// close asks the write pump to say goodbye and tear the connection down.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
