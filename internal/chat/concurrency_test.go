package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDisconnectRacingReconnect runs the old connection's disconnect against
// a reconnect of the same user. Either the disconnect wins and the user is
// fully removed (rooms left and user list rebroadcast), or the reconnect wins
// and the disconnect changes nothing.
func TestDisconnectRacingReconnect(t *testing.T) {
	for i := 0; i < 2000; i++ {
		c := NewCoordinator(NewRegistry(), NewDirectory(), NewHistory())
		old := connect(t, c, "a", "Alice")
		bob := connect(t, c, "b", "Bob")
		created, err := c.CreateRoom(old, "general")
		require.NoError(t, err)
		roomID := findEvent(t, created, EventRoomCreated).Data.(RoomInfo).ID
		_, err = c.JoinRoom(bob, roomID)
		require.NoError(t, err)

		newHandle := Handle(fmt.Sprintf("conn-a-%d", i))
		var (
			wg  sync.WaitGroup
			out []Outbound
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			out = c.Disconnect(old)
		}()
		go func() {
			defer wg.Done()
			_, _, err := c.Connect(newHandle, "a", "Alice")
			assert.NoError(t, err)
		}()
		wg.Wait()

		h, ok := c.Registry().Lookup("a")
		require.True(t, ok)
		require.Equal(t, newHandle, h)

		if len(out) == 0 {
			require.True(t, c.Directory().IsMember(roomID, "a"), "iteration %d: superseded disconnect removed the user from a room", i)
			continue
		}
		names := eventNames(out)
		require.Contains(t, names, EventUserLeftRoom, "iteration %d", i)
		require.Contains(t, names, EventUserList, "iteration %d: rooms left without deregistering", i)
		require.False(t, c.Directory().IsMember(roomID, "a"))
	}
}

// TestConcurrentRoomTraffic posts, joins and leaves one room from many
// goroutines at once.
func TestConcurrentRoomTraffic(t *testing.T) {
	const (
		senders = 50
		joiners = 40
	)

	c := NewCoordinator(NewRegistry(), NewDirectory(), NewHistory())
	owner := connect(t, c, "owner", "Owner")
	created, err := c.CreateRoom(owner, "busy")
	require.NoError(t, err)
	roomID := findEvent(t, created, EventRoomCreated).Data.(RoomInfo).ID

	sessions := make([]*Session, joiners)
	for i := range sessions {
		sessions[i] = connect(t, c, fmt.Sprintf("j%02d", i), fmt.Sprintf("joiner%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.RouteRoom(owner.UserID, owner.Username, roomID, Payload{Message: fmt.Sprintf("m%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			for n := 0; n < 3; n++ {
				_, err := c.JoinRoom(s, roomID)
				assert.NoError(t, err)
			}
			// Odd joiners leave again.
			if i%2 == 1 {
				_, err := c.LeaveRoom(s, roomID)
				assert.NoError(t, err)
			}
		}(i, s)
	}
	wg.Wait()

	assert.Equal(t, senders, c.History().Len(roomID))
	msgs := c.History().Of(roomID)
	seen := make(map[string]bool, len(msgs))
	for i, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate message id %s", m.ID)
		seen[m.ID] = true
		if i > 0 {
			assert.GreaterOrEqual(t, m.Timestamp, msgs[i-1].Timestamp, "timestamp went backwards at %d", i)
		}
	}

	members := c.Directory().Members(roomID)
	want := map[string]bool{"owner": true}
	for i := 0; i < joiners; i += 2 {
		want[fmt.Sprintf("j%02d", i)] = true
	}
	got := make(map[string]bool, len(members))
	for _, id := range members {
		assert.False(t, got[id], "member %s listed twice", id)
		got[id] = true
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "owner", members[0])
}
