package chat

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxRoomNameRunes = 100

// CreateRoom creates a room with the session's user as its only member. The
// creator receives room-created; every connection receives the new room list.
func (c *Coordinator) CreateRoom(s *Session, name string) ([]Outbound, error) {
	name = sanitizeRoomName(name)
	if name == "" {
		return nil, fmt.Errorf("create room: empty name: %w", ErrMalformedEvent)
	}

	info := c.directory.Create(name, s.UserID)
	c.history.Init(info.ID)

	out := []Outbound{emit(EventRoomCreated, info, s.Handle)}
	return append(out, c.BroadcastRoomList()...), nil
}

// SeedRoom creates a member-less room at startup.
func (c *Coordinator) SeedRoom(name string) (RoomInfo, error) {
	name = sanitizeRoomName(name)
	if name == "" {
		return RoomInfo{}, fmt.Errorf("seed room: empty name: %w", ErrMalformedEvent)
	}
	info := c.directory.Create(name, "")
	c.history.Init(info.ID)
	return info, nil
}

// JoinRoom adds the session's user to a room. Only the first join replays
// the history to the joiner and announces the join to the members; a repeat
// join returns nothing.
func (c *Coordinator) JoinRoom(s *Session, roomID string) ([]Outbound, error) {
	joined, err := c.directory.Join(roomID, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("join %q: %w", roomID, err)
	}
	if !joined {
		return nil, nil
	}

	replay := HistoryEvent{RoomID: roomID, Messages: c.history.Of(roomID)}
	out := []Outbound{emit(EventMessageHistory, replay, s.Handle)}
	return append(out, c.NotifyRoomJoined(roomID, s.Username)...), nil
}

// LeaveRoom removes the session's user from a room and tells the remaining
// members. Leaving a room one is not in does nothing.
func (c *Coordinator) LeaveRoom(s *Session, roomID string) ([]Outbound, error) {
	if _, ok := c.directory.Get(roomID); !ok {
		return nil, fmt.Errorf("leave %q: %w", roomID, ErrRoomNotFound)
	}
	if !c.directory.Leave(roomID, s.UserID) {
		return nil, nil
	}
	return c.NotifyRoomLeft(roomID, s.Username), nil
}

func sanitizeRoomName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))

	if utf8.RuneCountInString(name) > maxRoomNameRunes {
		name = string([]rune(name)[:maxRoomNameRunes])
	}
	return strings.TrimSpace(name)
}
