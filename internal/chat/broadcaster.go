package chat

// BroadcastUserList sends the full presence snapshot to every connection.
func (c *Coordinator) BroadcastUserList() []Outbound {
	return c.toAll(EventUserList, c.registry.ListOnline())
}

// BroadcastRoomList sends the full room list to every connection.
func (c *Coordinator) BroadcastRoomList() []Outbound {
	return c.toAll(EventRoomList, c.directory.List())
}

// NotifyRoomJoined tells the room's current members that username joined.
func (c *Coordinator) NotifyRoomJoined(roomID, username string) []Outbound {
	ev := RoomJoinedEvent{RoomID: roomID, Username: username, Timestamp: c.now().UnixMilli()}
	return c.toRoom(roomID, EventUserJoinedRoom, ev)
}

// NotifyRoomLeft tells the room's current members that username left.
func (c *Coordinator) NotifyRoomLeft(roomID, username string) []Outbound {
	return c.toRoom(roomID, EventUserLeftRoom, RoomLeftEvent{RoomID: roomID, Username: username})
}

// toRoom addresses an event to the online members of a room. Offline
// members and empty rooms produce no output.
func (c *Coordinator) toRoom(roomID, event string, data any) []Outbound {
	handles := c.registry.HandlesOf(c.directory.Members(roomID))
	if len(handles) == 0 {
		return nil
	}
	return []Outbound{emit(event, data, handles...)}
}

func (c *Coordinator) toAll(event string, data any) []Outbound {
	handles := c.registry.Handles()
	if len(handles) == 0 {
		return nil
	}
	return []Outbound{emit(event, data, handles...)}
}
