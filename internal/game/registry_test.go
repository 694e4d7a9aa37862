package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	idGen := fixedIDs("abc123")
	reg := NewRegistry(idGen)

	room, color, err := reg.CreateRoom("p1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", room.ID())
	assert.Equal(t, Black, color)
	assert.Equal(t, []ConnID{"p1"}, room.Players())
	assert.Equal(t, 1, reg.Len())

	found, ok := reg.Lookup("abc123")
	require.True(t, ok)
	assert.Same(t, room, found)

	_, ok = reg.Lookup("ABC123")
	assert.False(t, ok, "ids are case-sensitive")

	_, _, err = reg.CreateRoom("p1")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	idGen.AssertExpectations(t)
}

func TestCreateRoomRetriesOnCollision(t *testing.T) {
	idGen := fixedIDs("abc123", "abc123", "", "def456")
	reg := NewRegistry(idGen)

	first, _, err := reg.CreateRoom("p1")
	require.NoError(t, err)
	second, _, err := reg.CreateRoom("p2")
	require.NoError(t, err)

	assert.Equal(t, "abc123", first.ID())
	assert.Equal(t, "def456", second.ID())
	assert.Equal(t, []ConnID{"p1"}, first.Players(), "existing room must not be overwritten")
	assert.Equal(t, 2, reg.Len())
	idGen.AssertExpectations(t)
}

func TestJoinRoom(t *testing.T) {
	reg := NewRegistry(fixedIDs("abc123"))
	_, _, err := reg.CreateRoom("p1")
	require.NoError(t, err)

	_, _, err = reg.JoinRoom("p2", "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, _, err = reg.JoinRoom("p2", "")
	assert.ErrorIs(t, err, ErrRoomIDRequired)

	_, _, err = reg.JoinRoom("p1", "abc123")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	room, color, err := reg.JoinRoom("p2", "abc123")
	require.NoError(t, err)
	assert.Equal(t, White, color)
	assert.Equal(t, InProgress, room.Phase())
	assert.Equal(t, Black, room.Turn())

	_, _, err = reg.JoinRoom("p3", "abc123")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, room.Players(), 2)

	_, ok := reg.RoomOf("p3")
	assert.False(t, ok, "rejected joiner stays unbound")
}

func TestDisconnect(t *testing.T) {
	reg := NewRegistry(fixedIDs("abc123"))
	_, _, err := reg.CreateRoom("p1")
	require.NoError(t, err)
	_, _, err = reg.JoinRoom("p2", "abc123")
	require.NoError(t, err)

	dep, ok := reg.Disconnect("p1")
	require.True(t, ok)
	assert.False(t, dep.Removed)
	assert.Equal(t, []ConnID{"p2"}, dep.Remaining)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Disconnect("p1")
	assert.False(t, ok)

	dep, ok = reg.Disconnect("p2")
	require.True(t, ok)
	assert.True(t, dep.Removed)
	assert.Empty(t, dep.Remaining)
	assert.Equal(t, 0, reg.Len())

	_, _, err = reg.JoinRoom("p3", "abc123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDisconnectUnknownConnection(t *testing.T) {
	reg := NewRegistry(NewIDGen())
	_, ok := reg.Disconnect("ghost")
	assert.False(t, ok)
}

func TestConcurrentCreateAndDisconnect(t *testing.T) {
	reg := NewRegistry(NewIDGen())
	const n = 64

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, _, err := reg.CreateRoom(ConnID(fmt.Sprintf("p%d", i)))
			assert.NoError(t, err)
			ids[i] = room.ID()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.Len(t, id, roomIDLength)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, n, reg.Len())

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Disconnect(ConnID(fmt.Sprintf("p%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, reg.Len())
}

func TestRandomIDGen(t *testing.T) {
	id := NewIDGen().Generate()
	assert.Regexp(t, `^[0-9a-z]{6}$`, id)
}
