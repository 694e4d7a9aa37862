package game

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room full")
	ErrOutOfTurn       = errors.New("not your turn")
	ErrInvalidCell     = errors.New("invalid cell")
	ErrUnknownRoom     = errors.New("unknown room")
	ErrRoomIDRequired  = errors.New("room id required")
	ErrAlreadyInRoom   = errors.New("already in a room")
	ErrNotInRoom       = errors.New("not a member of this room")
	ErrColorMismatch   = errors.New("color does not belong to this connection")
	ErrWaitingOpponent = errors.New("waiting for opponent")
	ErrStaleWin        = errors.New("win signal for a finished game")
	ErrUnverifiedWin   = errors.New("win not present on board")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrBadPayload      = errors.New("malformed payload")
)

// Silent reports errors that are dropped without notifying the client.
func Silent(err error) bool {
	return errors.Is(err, ErrInvalidCell) ||
		errors.Is(err, ErrUnknownRoom) ||
		errors.Is(err, ErrStaleWin) ||
		errors.Is(err, ErrUnverifiedWin)
}

// ClientMessage is the error-message text sent to the originating connection.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room does not exist!"
	case errors.Is(err, ErrRoomFull):
		return "Room is full!"
	case errors.Is(err, ErrOutOfTurn):
		return "It is not your turn yet!"
	case errors.Is(err, ErrRoomIDRequired):
		return "Please enter a room id!"
	case errors.Is(err, ErrAlreadyInRoom):
		return "You are already in a room!"
	case errors.Is(err, ErrNotInRoom):
		return "You are not in this room!"
	case errors.Is(err, ErrColorMismatch):
		return "That is not your color!"
	case errors.Is(err, ErrWaitingOpponent):
		return "Waiting for an opponent to join!"
	case errors.Is(err, ErrUnknownEvent):
		return "Unknown request!"
	default:
		return "Malformed request!"
	}
}
