package chat

import "fmt"

// State is the lifecycle state of one connection.
type State int

// Connections move Connecting -> Active -> Closed. A connection whose
// handshake lacked identity stays Connecting until it closes.
const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the per-connection identity. It is owned by the goroutine
// reading that connection and must not be shared.
type Session struct {
	Handle   Handle
	UserID   string
	Username string
	state    State
}

// State returns the session's lifecycle state.
func (s *Session) State() State { return s.state }

// Active reports whether identity-bound events may be handled.
func (s *Session) Active() bool { return s.state == StateActive }

// Connect registers a new connection. With both identity fields present the
// session becomes Active: every other connection gets the new user list and
// the newcomer gets the user list without itself, the room list and the
// history of every room. Without identity the returned session is inert and
// the error is ErrMalformedHandshake; the connection is not rejected.
func (c *Coordinator) Connect(h Handle, userID, username string) (*Session, []Outbound, error) {
	s := &Session{Handle: h, UserID: userID, Username: username, state: StateConnecting}
	if userID == "" || username == "" {
		return s, nil, ErrMalformedHandshake
	}

	c.lifecycle.Lock()
	c.registry.Register(h, userID, username)
	c.lifecycle.Unlock()
	s.state = StateActive

	online := c.registry.ListOnline()
	others := make([]Handle, 0, len(online))
	for _, hh := range c.registry.Handles() {
		if hh != h {
			others = append(others, hh)
		}
	}
	withoutSelf := make([]Identity, 0, len(online))
	for _, id := range online {
		if id.ID != userID {
			withoutSelf = append(withoutSelf, id)
		}
	}

	var out []Outbound
	if len(others) > 0 {
		out = append(out, emit(EventUserList, online, others...))
	}
	rooms := c.directory.List()
	out = append(out,
		emit(EventUserList, withoutSelf, h),
		emit(EventRoomList, rooms, h),
	)
	for _, r := range rooms {
		replay := HistoryEvent{RoomID: r.ID, Messages: c.history.Of(r.ID)}
		out = append(out, emit(EventMessageHistory, replay, h))
	}
	return s, out, nil
}

// Disconnect closes the session. An Active user leaves every room it belongs
// to, with a leave notice to each room's remaining members, and is then
// deregistered and the new user list broadcast. If the user id has since
// been registered by another connection, this one was superseded and no
// shared state changes.
func (c *Coordinator) Disconnect(s *Session) []Outbound {
	wasActive := s.state == StateActive
	s.state = StateClosed
	if !wasActive {
		return nil
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if h, ok := c.registry.Lookup(s.UserID); !ok || h != s.Handle {
		return nil
	}

	var out []Outbound
	for _, roomID := range c.directory.LeaveAll(s.UserID) {
		out = append(out, c.NotifyRoomLeft(roomID, s.Username)...)
	}
	if c.registry.DeregisterHandle(s.UserID, s.Handle) {
		out = append(out, c.BroadcastUserList()...)
	}
	return out
}
