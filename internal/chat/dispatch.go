package chat

import (
	"encoding/json"
	"fmt"
)

// Dispatch decodes one inbound envelope and runs its handler. Inert sessions
// are ignored. The returned error is informational only; nothing is sent to
// the client on error.
func (c *Coordinator) Dispatch(s *Session, env Envelope) ([]Outbound, error) {
	if !s.Active() {
		return nil, fmt.Errorf("%s on %s session: %w", env.Event, s.state, ErrMalformedHandshake)
	}

	switch env.Event {
	case EventPrivateMessage:
		var req PrivateMessageRequest
		if err := decode(env, &req); err != nil {
			return nil, err
		}
		return c.RouteDirect(s.UserID, req.To, req.Payload)

	case EventRoomMessage:
		var req RoomMessageRequest
		if err := decode(env, &req); err != nil {
			return nil, err
		}
		return c.RouteRoom(s.UserID, s.Username, req.RoomID, req.Payload)

	case EventCreateRoom:
		var req CreateRoomRequest
		if err := decode(env, &req); err != nil {
			return nil, err
		}
		return c.CreateRoom(s, req.Name)

	case EventJoinRoom:
		var req RoomRequest
		if err := decode(env, &req); err != nil {
			return nil, err
		}
		return c.JoinRoom(s, req.RoomID)

	case EventLeaveRoom:
		var req RoomRequest
		if err := decode(env, &req); err != nil {
			return nil, err
		}
		return c.LeaveRoom(s, req.RoomID)

	case EventOffer, EventAnswer, EventICECandidate:
		return c.Relay(s, env.Event, env.Data)

	default:
		return nil, fmt.Errorf("%q: %w", env.Event, ErrUnknownEvent)
	}
}

func decode(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: empty payload: %w", env.Event, ErrMalformedEvent)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: %w: %v", env.Event, ErrMalformedEvent, err)
	}
	return nil
}
