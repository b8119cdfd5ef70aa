package chat

import "encoding/json"

// Inbound event names.
const (
	EventPrivateMessage = "private-message"
	EventCreateRoom     = "create-room"
	EventRoomMessage    = "room-message"
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventOffer          = "offer"
	EventAnswer         = "answer"
	EventICECandidate   = "ice-candidate"
)

// Outbound-only event names. private-message and room-message are reused
// in both directions.
const (
	EventUserList       = "user-list"
	EventRoomList       = "room-list"
	EventRoomCreated    = "room-created"
	EventMessageHistory = "group-message-history"
	EventUserJoinedRoom = "user-joined-room"
	EventUserLeftRoom   = "user-left-room"
)

// Envelope is the frame exchanged over the wire in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Payload is the client-supplied body of a direct or room message. The
// message and file content may be encoded by the client; the server never
// decodes them.
type Payload struct {
	Message     string `json:"message"`
	IsFile      bool   `json:"isFile,omitempty"`
	IsEncrypted bool   `json:"isEncrypted,omitempty"`
	FileContent string `json:"fileContent,omitempty"`
}

// Message is an immutable, server-stamped message.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Payload
	Timestamp int64 `json:"timestamp"`
}

// RoomMessage is a Message as delivered to room members.
type RoomMessage struct {
	RoomID string `json:"roomId"`
	Message
}

// Identity is one entry of the presence snapshot.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RoomInfo is a point-in-time view of a room.
type RoomInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// HistoryEvent carries a room's full message log.
type HistoryEvent struct {
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}

// RoomJoinedEvent announces a new member to the room.
type RoomJoinedEvent struct {
	RoomID    string `json:"roomId"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// RoomLeftEvent announces a departed member to the room.
type RoomLeftEvent struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// PrivateMessageRequest is the inbound private-message body.
type PrivateMessageRequest struct {
	To string `json:"to"`
	Payload
}

// RoomMessageRequest is the inbound room-message body.
type RoomMessageRequest struct {
	RoomID string `json:"roomId"`
	Payload
}

// CreateRoomRequest is the inbound create-room body.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomRequest is the inbound join-room and leave-room body.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

// UnmarshalJSON accepts both {"roomId": "..."} and a bare JSON string.
func (r *RoomRequest) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.RoomID = id
		return nil
	}
	type plain RoomRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RoomRequest(p)
	return nil
}

// Outbound is one emission computed by a handler: an event and its payload
// addressed to a set of connections. The transport encodes Data once and
// delivers it to every handle in To.
type Outbound struct {
	To    []Handle
	Event string
	Data  any
}

func emit(event string, data any, to ...Handle) Outbound {
	return Outbound{To: to, Event: event, Data: data}
}
