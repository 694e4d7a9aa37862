package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry owns every live room and the connection-to-room bindings.
// Lock order is registry before room.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	bindings map[ConnID]*Room
	idGen    IDGenerator
}

func NewRegistry(idGen IDGenerator) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		bindings: make(map[ConnID]*Room),
		idGen:    idGen,
	}
}

// CreateRoom allocates a fresh room with conn as the black player.
func (reg *Registry) CreateRoom(conn ConnID) (*Room, Color, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, bound := reg.bindings[conn]; bound {
		return nil, Empty, ErrAlreadyInRoom
	}

	id := reg.idGen.Generate()
	for {
		if _, taken := reg.rooms[id]; !taken && id != "" {
			break
		}
		log.Debug().Str("room", id).Msg("room id collision, regenerating")
		id = reg.idGen.Generate()
	}

	room := newRoom(id, conn)
	reg.rooms[id] = room
	reg.bindings[conn] = room
	log.Info().Str("room", id).Str("conn", string(conn)).Int("rooms", len(reg.rooms)).Msg("room created")
	return room, Black, nil
}

// JoinRoom attaches conn as the second player of roomID.
func (reg *Registry) JoinRoom(conn ConnID, roomID string) (*Room, Color, error) {
	if roomID == "" {
		return nil, Empty, ErrRoomIDRequired
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, bound := reg.bindings[conn]; bound {
		return nil, Empty, ErrAlreadyInRoom
	}
	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, Empty, ErrRoomNotFound
	}
	color, err := room.join(conn)
	if err != nil {
		return nil, Empty, err
	}
	reg.bindings[conn] = room
	log.Info().Str("room", roomID).Str("conn", string(conn)).Stringer("color", color).Msg("player joined")
	return room, color, nil
}

// Departure describes what a disconnect did to the connection's room.
type Departure struct {
	Room      *Room
	Remaining []ConnID
	Removed   bool
}

// Disconnect unbinds conn. An emptied room is destroyed; otherwise the
// remaining players are reported so they can be notified.
func (reg *Registry) Disconnect(conn ConnID) (Departure, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.bindings[conn]
	if !ok {
		return Departure{}, false
	}
	delete(reg.bindings, conn)

	left, _ := room.leave(conn)
	dep := Departure{Room: room}
	if left == 0 {
		if current, ok := reg.rooms[room.id]; ok && current == room {
			delete(reg.rooms, room.id)
		}
		dep.Removed = true
		log.Info().Str("room", room.id).Int("rooms", len(reg.rooms)).Msg("room removed")
	} else {
		dep.Remaining = room.Players()
		log.Info().Str("room", room.id).Str("conn", string(conn)).Msg("player left, opponent notified")
	}
	return dep, true
}

// Lookup finds a live room by exact id.
func (reg *Registry) Lookup(roomID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// RoomOf returns the room conn is bound to.
func (reg *Registry) RoomOf(conn ConnID) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.bindings[conn]
	return room, ok
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
