package game

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

type handlerFunc func(d *Dispatcher, conn ConnID, data json.RawMessage) ([]Outbound, error)

var handlers = map[string]handlerFunc{
	EventCreateRoom:  (*Dispatcher).createRoom,
	EventJoinRoom:    (*Dispatcher).joinRoom,
	EventMakeMove:    (*Dispatcher).makeMove,
	EventGameWin:     (*Dispatcher).gameWin,
	EventRestartGame: (*Dispatcher).restartGame,
}

// Dispatcher routes inbound events to the registry and its rooms and returns
// the messages to deliver. It performs no I/O itself.
type Dispatcher struct {
	registry   *Registry
	verifyWins bool
}

type DispatcherOption func(*Dispatcher)

// WithWinVerification makes game-win signals count only when the board
// actually holds a winning line for the claimed color.
func WithWinVerification(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.verifyWins = enabled
	}
}

func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{registry: registry}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch handles one event from conn to completion. Rejections become a
// private error-message; silent rejections produce nothing.
func (d *Dispatcher) Dispatch(conn ConnID, env Envelope) []Outbound {
	handle, ok := handlers[env.Event]
	if !ok {
		return d.reject(conn, env.Event, ErrUnknownEvent)
	}
	out, err := handle(d, conn, env.Data)
	if err != nil {
		return d.reject(conn, env.Event, err)
	}
	return out
}

// Reject turns a transport-level failure for conn into the same private
// notice a handler rejection would produce.
func (d *Dispatcher) Reject(conn ConnID, err error) []Outbound {
	return d.reject(conn, "", err)
}

func (d *Dispatcher) reject(conn ConnID, event string, err error) []Outbound {
	if Silent(err) {
		log.Debug().Str("conn", string(conn)).Str("event", event).Err(err).Msg("request ignored")
		return nil
	}
	log.Info().Str("conn", string(conn)).Str("event", event).Err(err).Msg("request rejected")
	return []Outbound{private(conn, EventErrorMessage, ClientMessage(err))}
}

// Disconnect removes conn from its room and tells any remaining player.
func (d *Dispatcher) Disconnect(conn ConnID) []Outbound {
	dep, ok := d.registry.Disconnect(conn)
	if !ok || dep.Removed {
		return nil
	}
	return []Outbound{{To: dep.Remaining, Event: EventErrorMessage, Data: "Your opponent has disconnected!"}}
}

func (d *Dispatcher) createRoom(conn ConnID, _ json.RawMessage) ([]Outbound, error) {
	room, color, err := d.registry.CreateRoom(conn)
	if err != nil {
		return nil, err
	}
	return []Outbound{
		private(conn, EventPlayerColor, color),
		private(conn, EventRoomCreated, room.ID()),
	}, nil
}

func (d *Dispatcher) joinRoom(conn ConnID, data json.RawMessage) ([]Outbound, error) {
	roomID, err := decodeRoomID(data)
	if err != nil {
		return nil, err
	}
	room, color, err := d.registry.JoinRoom(conn, roomID)
	if err != nil {
		return nil, err
	}
	players := room.Players()
	return []Outbound{
		private(conn, EventPlayerColor, color),
		private(conn, EventRoomJoined, room.ID()),
		{To: players, Event: EventGameStart},
		{To: players, Event: EventTurn, Data: Black},
	}, nil
}

func (d *Dispatcher) makeMove(conn ConnID, data json.RawMessage) ([]Outbound, error) {
	var req MoveRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	room, err := d.memberRoom(conn, req.RoomID)
	if err != nil {
		return nil, err
	}
	if bound, _ := room.ColorOf(conn); bound != req.Color {
		return nil, ErrColorMismatch
	}
	move, err := room.SubmitMove(req.Color, req.X, req.Y)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("room", room.ID()).Stringer("color", move.Color).Int("x", move.X).Int("y", move.Y).Msg("move applied")
	players := room.Players()
	return []Outbound{
		{To: players, Event: EventMove, Data: move},
		{To: players, Event: EventTurn, Data: move.Color.Opponent()},
	}, nil
}

func (d *Dispatcher) gameWin(conn ConnID, data json.RawMessage) ([]Outbound, error) {
	var req WinRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	room, err := d.memberRoom(conn, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := room.DeclareWin(conn, req.Color, d.verifyWins); err != nil {
		if errors.Is(err, ErrUnverifiedWin) {
			log.Warn().Str("room", room.ID()).Str("conn", string(conn)).Stringer("color", req.Color).Msg("unverified win claim")
		}
		return nil, err
	}
	log.Info().Str("room", room.ID()).Stringer("winner", req.Color).Msg("game over")
	players := room.Players()
	return []Outbound{
		{To: players, Event: EventGameOver, Data: GameOver{Winner: req.Color}},
		{To: players, Event: EventTurn, Data: Black},
	}, nil
}

func (d *Dispatcher) restartGame(conn ConnID, data json.RawMessage) ([]Outbound, error) {
	var req RoomRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	room, err := d.memberRoom(conn, req.RoomID)
	if err != nil {
		return nil, err
	}
	room.Restart()
	log.Info().Str("room", room.ID()).Msg("game reset")
	players := room.Players()
	return []Outbound{
		{To: players, Event: EventGameReset},
		{To: players, Event: EventTurn, Data: Black},
	}, nil
}

// memberRoom resolves roomID and checks conn plays in it. Unknown rooms are
// a silent no-op.
func (d *Dispatcher) memberRoom(conn ConnID, roomID string) (*Room, error) {
	room, ok := d.registry.Lookup(roomID)
	if !ok {
		return nil, ErrUnknownRoom
	}
	if _, member := room.ColorOf(conn); !member {
		return nil, ErrNotInRoom
	}
	return room, nil
}

func private(conn ConnID, event string, data any) Outbound {
	return Outbound{To: []ConnID{conn}, Event: event, Data: data}
}
