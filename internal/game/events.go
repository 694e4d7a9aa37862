package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client to server events.
const (
	EventCreateRoom  = "create-room"
	EventJoinRoom    = "join-room"
	EventMakeMove    = "make-move"
	EventGameWin     = "game-win"
	EventRestartGame = "restart-game"
)

// Server to client events.
const (
	EventPlayerColor  = "player-color"
	EventRoomCreated  = "room-created"
	EventRoomJoined   = "room-joined"
	EventErrorMessage = "error-message"
	EventGameStart    = "game-start"
	EventTurn         = "turn"
	EventMove         = "move"
	EventGameOver     = "game-over"
	EventGameReset    = "game-reset"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is a message the transport must deliver to each connection in To.
type Outbound struct {
	To    []ConnID
	Event string
	Data  any
}

// Encode renders the outbound message as a wire frame.
func (o Outbound) Encode() ([]byte, error) {
	env := Envelope{Event: o.Event}
	if o.Data != nil {
		data, err := json.Marshal(o.Data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", o.Event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

type MoveRequest struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Color  Color  `json:"color"`
	RoomID string `json:"roomId"`
}

type WinRequest struct {
	Color  Color  `json:"color"`
	RoomID string `json:"roomId"`
}

type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type GameOver struct {
	Winner Color `json:"winner"`
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrBadPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// decodeRoomID accepts either a bare string or {"roomId": ...}.
func decodeRoomID(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return strings.TrimSpace(id), nil
	}
	var req RoomRequest
	if err := decode(data, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.RoomID), nil
}
