package game

import (
	"fmt"
	"sync"
)

// ConnID identifies one client connection.
type ConnID string

// Phase is the match state of a room.
type Phase int

const (
	WaitingForOpponent Phase = iota
	InProgress
	// Finished is transient: a win resets the board in the same step.
	Finished
)

func (p Phase) String() string {
	switch p {
	case WaitingForOpponent:
		return "waiting"
	case InProgress:
		return "in-progress"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

const MaxPlayers = 2

type player struct {
	conn     ConnID
	color    Color
	lastGame int // game of this player's last move
}

// Move is an applied stone.
type Move struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Color Color `json:"color"`
}

// Room is the match coordinator for a single room. All methods are safe for
// concurrent use; each runs to completion under the room lock.
type Room struct {
	mu      sync.Mutex
	id      string
	players []player
	board   Board
	turn    Color
	phase   Phase
	// game counts board resets; lastWin is the winner that ended game-1.
	game    int
	lastWin Color
}

func newRoom(id string, creator ConnID) *Room {
	return &Room{
		id:      id,
		players: []player{{conn: creator, color: Black}},
		turn:    Black,
		phase:   WaitingForOpponent,
	}
}

// ID returns the room's join token.
func (r *Room) ID() string {
	return r.id
}

// join adds the second player with the color left free and starts the match.
func (r *Room) join(conn ConnID) (Color, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return Empty, ErrRoomFull
	}
	color := White
	if len(r.players) == 1 {
		color = r.players[0].color.Opponent()
	}
	r.players = append(r.players, player{conn: conn, color: color})
	if len(r.players) == MaxPlayers {
		r.resetLocked()
		r.phase = InProgress
	}
	return color, nil
}

// leave removes conn and returns the number of players left.
func (r *Room) leave(conn ConnID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.conn == conn {
			r.players = append(r.players[:i], r.players[i+1:]...)
			r.phase = WaitingForOpponent
			return len(r.players), true
		}
	}
	return len(r.players), false
}

// SubmitMove validates and applies a move for color at (x, y).
func (r *Room) SubmitMove(color Color, x, y int) (Move, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != InProgress {
		return Move{}, ErrWaitingOpponent
	}
	if color != r.turn {
		return Move{}, ErrOutOfTurn
	}
	if err := r.board.Place(x, y, color); err != nil {
		return Move{}, err
	}
	if i := r.indexOfColor(color); i >= 0 {
		r.players[i].lastGame = r.game
	}
	r.turn = color.Opponent()
	return Move{X: x, Y: y, Color: color}, nil
}

// DeclareWin ends the current game in favor of winner and resets the board.
// The claim is trusted unless verify is set, in which case the board must hold
// a winning line for winner. A claim is stale when the board is empty, or when
// it repeats the previous game's winner from a player who has not moved since.
func (r *Room) DeclareWin(conn ConnID, winner Color, verify bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if winner != Black && winner != White {
		return fmt.Errorf("%w: winner must be a player color", ErrBadPayload)
	}
	i := r.indexOf(conn)
	if i < 0 {
		return ErrNotInRoom
	}
	if r.board.IsEmpty() || (winner == r.lastWin && r.players[i].lastGame < r.game) {
		return ErrStaleWin
	}
	if verify && !r.board.HasLine(winner) {
		return ErrUnverifiedWin
	}
	if r.phase == InProgress {
		r.phase = Finished
	}
	r.resetLocked()
	r.lastWin = winner
	return nil
}

// Restart clears the board and hands the turn back to black.
func (r *Room) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Room) resetLocked() {
	r.board.Reset()
	r.turn = Black
	r.game++
	r.lastWin = Empty
	if r.phase == Finished {
		r.phase = InProgress
	}
}

// CheckWin runs win detection against the room's board.
func (r *Room) CheckWin(x, y int, color Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.CheckWin(x, y, color)
}

// Players returns the connections seated in the room, creator first.
func (r *Room) Players() []ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]ConnID, len(r.players))
	for i, p := range r.players {
		conns[i] = p.conn
	}
	return conns
}

// ColorOf returns the color bound to conn in this room.
func (r *Room) ColorOf(conn ConnID) (Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(conn); i >= 0 {
		return r.players[i].color, true
	}
	return Empty, false
}

func (r *Room) indexOf(conn ConnID) int {
	for i, p := range r.players {
		if p.conn == conn {
			return i
		}
	}
	return -1
}

func (r *Room) indexOfColor(c Color) int {
	for i, p := range r.players {
		if p.color == c {
			return i
		}
	}
	return -1
}

// Turn returns the color allowed to move next.
func (r *Room) Turn() Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn
}

// Phase returns the room's match state.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Board returns a copy of the current board.
func (r *Room) Board() Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}
