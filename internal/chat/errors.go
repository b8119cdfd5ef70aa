package chat

import "errors"

// The errors below never reach clients. Handlers return them so the
// transport can log and count the drop; the client sees nothing.
var (
	// ErrRoomNotFound is returned when a room id is not in the directory.
	ErrRoomNotFound = errors.New("chat: room not found")

	// ErrRecipientOffline is returned when the target of a direct message
	// or relayed signal has no registered connection.
	ErrRecipientOffline = errors.New("chat: recipient offline")

	// ErrMalformedHandshake is returned when a connection arrives without
	// both a user id and a display name. The connection stays open but inert.
	ErrMalformedHandshake = errors.New("chat: handshake missing identity")

	// ErrMalformedEvent is returned when an inbound payload cannot be decoded.
	ErrMalformedEvent = errors.New("chat: malformed event")

	// ErrUnknownEvent is returned for event names the server does not handle.
	ErrUnknownEvent = errors.New("chat: unknown event")
)
