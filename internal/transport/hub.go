package transport

import (
	"context"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/stonify5/gomoku/internal/game"
)

// inbound is one frame from a client. err is set when the frame could not
// be decoded into an envelope.
type inbound struct {
	client *Client
	env    game.Envelope
	err    error
}

// Hub owns every live client and feeds their events, one at a time, to the
// dispatcher. Run must be running for ServeConn to make progress.
type Hub struct {
	dispatcher  *game.Dispatcher
	opts        Options
	clients     map[game.ConnID]*Client
	register    chan *Client
	unregister  chan *Client
	events      chan inbound
	done        chan struct{}
	connections atomic.Int64
}

func NewHub(dispatcher *game.Dispatcher, opts Options) *Hub {
	return &Hub{
		dispatcher: dispatcher,
		opts:       opts,
		clients:    make(map[game.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		// unbuffered: an event is handled before its sender can unregister
		events: make(chan inbound),
		done:   make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
			h.connections.Add(1)
			log.Info().Str("conn", string(c.id)).Int64("connections", h.connections.Load()).Msg("connection registered")
		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			delete(h.clients, c.id)
			h.connections.Add(-1)
			h.deliver(h.dispatcher.Disconnect(c.id))
			log.Info().Str("conn", string(c.id)).Int64("connections", h.connections.Load()).Msg("connection unregistered")
		case in := <-h.events:
			if _, ok := h.clients[in.client.id]; !ok {
				continue
			}
			if in.err != nil {
				h.deliver(h.dispatcher.Reject(in.client.id, in.err))
				continue
			}
			h.deliver(h.dispatcher.Dispatch(in.client.id, in.env))
		case <-ctx.Done():
			for id, c := range h.clients {
				c.close()
				delete(h.clients, id)
			}
			h.connections.Store(0)
			log.Info().Msg("hub stopped")
			return
		}
	}
}

// ServeConn attaches an upgraded websocket and blocks until it is closed.
func (h *Hub) ServeConn(conn *websocket.Conn) {
	c := newClient(h, conn, h.opts)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	log.Info().Str("conn", string(c.id)).Str("remote", conn.RemoteAddr().String()).Msg("websocket connection established")
	go c.writePump()
	c.readPump()
}

// Connections reports the number of registered clients.
func (h *Hub) Connections() int64 {
	return h.connections.Load()
}

func (h *Hub) submit(in inbound) bool {
	select {
	case h.events <- in:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) deliver(out []game.Outbound) {
	for _, o := range out {
		msg, err := o.Encode()
		if err != nil {
			log.Error().Err(err).Str("event", o.Event).Msg("dropping undeliverable message")
			continue
		}
		for _, id := range o.To {
			c, ok := h.clients[id]
			if !ok {
				continue
			}
			c.trySend(msg)
		}
	}
}
