package chat

import (
	"encoding/json"
	"fmt"
)

// signalKeys maps each peer-negotiation event to the field carrying its
// opaque payload.
var signalKeys = map[string]string{
	EventOffer:        "offer",
	EventAnswer:       "answer",
	EventICECandidate: "candidate",
}

// Relay forwards a peer-negotiation payload to the connection of its "to"
// user as {"from": <sender id>, <key>: <payload>}. The payload is never
// inspected.
func (c *Coordinator) Relay(s *Session, event string, data json.RawMessage) ([]Outbound, error) {
	key, ok := signalKeys[event]
	if !ok {
		return nil, fmt.Errorf("relay %q: %w", event, ErrUnknownEvent)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("relay %q: %w: %v", event, ErrMalformedEvent, err)
	}
	var to string
	if err := json.Unmarshal(fields["to"], &to); err != nil || to == "" {
		return nil, fmt.Errorf("relay %q: missing recipient: %w", event, ErrMalformedEvent)
	}

	h, ok := c.registry.Lookup(to)
	if !ok {
		return nil, fmt.Errorf("relay %q to %q: %w", event, to, ErrRecipientOffline)
	}

	body := map[string]json.RawMessage{"from": mustJSON(s.UserID)}
	if v, ok := fields[key]; ok {
		body[key] = v
	}
	return []Outbound{emit(event, body, h)}, nil
}

func mustJSON(v string) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
