package chat

import "fmt"

// RouteDirect delivers a private message to the recipient's connection only.
// Offline recipients are not queued; the message is dropped with
// ErrRecipientOffline. Direct messages are stamped with an id and a server
// timestamp like room messages, but are never stored.
func (c *Coordinator) RouteDirect(senderID, recipientID string, p Payload) ([]Outbound, error) {
	h, ok := c.registry.Lookup(recipientID)
	if !ok {
		return nil, fmt.Errorf("direct message to %q: %w", recipientID, ErrRecipientOffline)
	}

	now := c.now()
	msg := Message{
		ID:        c.ids.next(now),
		From:      senderID,
		Payload:   p,
		Timestamp: now.UnixMilli(),
	}
	return []Outbound{emit(EventPrivateMessage, msg, h)}, nil
}

// RouteRoom stores a message in the room's history and delivers it to every
// online member, the sender included. Membership is not required to post.
func (c *Coordinator) RouteRoom(senderID, senderName, roomID string, p Payload) ([]Outbound, error) {
	if _, ok := c.directory.Get(roomID); !ok {
		return nil, fmt.Errorf("room message from %q to %q: %w", senderID, roomID, ErrRoomNotFound)
	}

	stored := c.history.Append(roomID, Message{From: senderName, Payload: p})
	return c.toRoom(roomID, EventRoomMessage, RoomMessage{RoomID: roomID, Message: stored}), nil
}
