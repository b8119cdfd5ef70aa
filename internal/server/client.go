package server

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
	"github.com/Tyrowin/nexus-chat-server/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection. Its read pump feeds inbound envelopes
// to the chat core and its write pump drains the send queue, one JSON
// envelope per frame.
type Client struct {
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	coord          *chat.Coordinator
	handle         chat.Handle
	addr           string
	userID         string
	username       string
	closed         bool
	maxMessageSize int64
	limiter        *rate.Limiter
	logger         zerolog.Logger
}

// NewClient wraps an upgraded connection. userID and username come from the
// handshake query and may be empty, in which case the connection stays open
// but every event it sends is ignored.
func NewClient(conn *websocket.Conn, hub *Hub, coord *chat.Coordinator, cfg Config, addr, userID, username string, logger zerolog.Logger) *Client {
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	handle := chat.Handle(uuid.NewString())

	return &Client{
		conn:           conn,
		send:           make(chan []byte, cfg.SendBufferSize),
		hub:            hub,
		coord:          coord,
		handle:         handle,
		addr:           addr,
		userID:         userID,
		username:       username,
		maxMessageSize: cfg.MaxMessageSize,
		limiter:        newRateLimiter(cfg.RateLimit),
		logger: logger.With().
			Str("conn_id", string(handle)).
			Str("remote_addr", addr).
			Str("user_id", userID).
			Logger(),
	}
}

// Handle returns the connection handle the chat core knows this client by.
func (c *Client) Handle() chat.Handle {
	return c.handle
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("error setting initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error().Err(err).Msg("error setting read deadline in pong handler")
		}
		return nil
	})
}

// logReadError records why the read loop ended.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn().Int64("limit", c.maxMessageSize).Msg("frame exceeded maximum size")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.logger.Info().Err(err).Msg("client disconnected")
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.logger.Info().Err(err).Msg("client connection closed")
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
		c.logger.Warn().Err(err).Msg("unexpected websocket close")
	default:
		c.logger.Debug().Err(err).Msg("websocket read ended")
	}
}

func (c *Client) checkRateLimit() bool {
	if c.limiter != nil && !c.limiter.Allow() {
		metrics.EventsDropped.WithLabelValues("rate_limited").Inc()
		c.logger.Warn().Msg("rate limit exceeded; discarding event")
		return false
	}
	return true
}

// processMessage decodes one frame, runs it through the chat core and
// delivers whatever the handler emitted. Failures are logged and counted but
// never reported to the client.
func (c *Client) processMessage(session *chat.Session, raw []byte) {
	var env chat.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		metrics.EventsDropped.WithLabelValues(dropReason(chat.ErrMalformedEvent)).Inc()
		c.logger.Debug().Err(err).Msg("discarding frame that is not an event envelope")
		return
	}

	metrics.EventsReceived.WithLabelValues(eventLabel(env.Event)).Inc()

	out, err := c.coord.Dispatch(session, env)
	if err != nil {
		metrics.EventsDropped.WithLabelValues(dropReason(err)).Inc()
		c.logger.Debug().Err(err).Str("event", env.Event).Msg("event dropped")
		return
	}

	switch env.Event {
	case chat.EventPrivateMessage:
		metrics.MessagesRouted.WithLabelValues("direct").Inc()
	case chat.EventRoomMessage:
		metrics.MessagesRouted.WithLabelValues("room").Inc()
	case chat.EventCreateRoom:
		metrics.RoomsCreated.Inc()
	}
	c.hub.Deliver(out)
}

var inboundEvents = map[string]bool{
	chat.EventPrivateMessage: true,
	chat.EventCreateRoom:     true,
	chat.EventRoomMessage:    true,
	chat.EventJoinRoom:       true,
	chat.EventLeaveRoom:      true,
	chat.EventOffer:          true,
	chat.EventAnswer:         true,
	chat.EventICECandidate:   true,
}

// eventLabel keeps client-chosen event names out of metric labels.
func eventLabel(event string) string {
	if inboundEvents[event] {
		return event
	}
	return "other"
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, chat.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, chat.ErrRecipientOffline):
		return "recipient_offline"
	case errors.Is(err, chat.ErrMalformedHandshake):
		return "no_identity"
	case errors.Is(err, chat.ErrUnknownEvent):
		return "unknown_event"
	default:
		return "malformed"
	}
}

func (c *Client) readPump() {
	session, out, err := c.coord.Connect(c.handle, c.userID, c.username)
	if err != nil {
		c.logger.Warn().Err(err).Msg("handshake without identity; events from this connection are ignored")
	} else {
		c.logger.Info().Str("username", c.username).Msg("user online")
	}
	c.hub.Deliver(out)

	defer func() {
		c.hub.Deliver(c.coord.Disconnect(session))
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Error().Err(err).Msg("error closing connection in readPump")
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if !c.checkRateLimit() {
			continue
		}

		c.processMessage(session, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Error().Err(err).Msg("error closing connection in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeFrame(frame, ok) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrame writes one queued envelope, or a close frame once the queue has
// been closed. It returns false when the pump should stop.
func (c *Client) writeFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("error setting write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			c.logger.Debug().Err(err).Msg("error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn().Err(err).Msg("error writing message")
		}
		return false
	}
	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("error setting write deadline for ping")
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("error writing ping message")
		return false
	}
	return true
}
