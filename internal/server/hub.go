package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
	"github.com/Tyrowin/nexus-chat-server/internal/metrics"
)

// Hub owns the set of live WebSocket clients keyed by connection handle.
// It starts each client's pumps on registration and turns the Outbound
// values computed by the chat core into frames on the right send queues.
type Hub struct {
	clients    map[chat.Handle]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	logger     zerolog.Logger
}

// NewHub creates a Hub. Run must be started before clients register.
func NewHub(logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[chat.Handle]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Register hands a new client to the hub. It returns false once the hub is
// shutting down; the caller then owns the connection.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Unregister removes a client and closes its send queue. It is a no-op for
// clients that were already removed.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run is the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.logger.Warn().Msg("received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			h.clients[client.handle] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()

			metrics.ConnectionsTotal.Inc()
			metrics.ConnectionsActive.Inc()
			client.logger.Info().Int("clients", clientCount).Msg("client registered")

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			if h.remove(client) {
				client.logger.Info().Int("clients", h.Count()).Msg("client unregistered")
			}
		}
	}
}

// Deliver encodes every Outbound once and queues it for each addressed
// client. Handles with no live client are skipped. A client whose queue is
// full is removed, which closes its connection.
func (h *Hub) Deliver(out []chat.Outbound) {
	for _, o := range out {
		frame, err := encodeFrame(o)
		if err != nil {
			h.logger.Error().Err(err).Str("event", o.Event).Msg("failed to encode outbound event")
			continue
		}

		var failed []*Client
		for _, handle := range o.To {
			client := h.lookup(handle)
			if client == nil {
				continue
			}
			if !h.safeSend(client, frame) {
				failed = append(failed, client)
			}
		}
		h.removeFailedClients(failed)
	}
}

func encodeFrame(o chat.Outbound) ([]byte, error) {
	data, err := json.Marshal(o.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(chat.Envelope{Event: o.Event, Data: data})
}

func (h *Hub) lookup(handle chat.Handle) *Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.clients[handle]
}

func (h *Hub) safeSend(client *Client, frame []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// The send queue is only closed under the write lock, so holding the
	// read lock makes the send below safe.
	if _, exists := h.clients[client.handle]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- frame:
		metrics.FramesSent.Inc()
		return true
	default:
		return false
	}
}

// remove deletes client from the hub and closes its send queue. It reports
// whether the client was still registered.
func (h *Hub) remove(client *Client) bool {
	h.mutex.Lock()
	current, ok := h.clients[client.handle]
	if !ok || current != client {
		h.mutex.Unlock()
		return false
	}
	delete(h.clients, client.handle)
	client.closed = true
	close(client.send)
	h.mutex.Unlock()

	metrics.ConnectionsActive.Dec()
	return true
}

func (h *Hub) removeFailedClients(clients []*Client) {
	for _, client := range clients {
		if h.remove(client) {
			metrics.SlowClientsEvicted.Inc()
			client.logger.Warn().Msg("client removed due to full send buffer")
		}
	}
}

// shutdownClients closes every send queue and connection so that all pumps
// exit.
func (h *Hub) shutdownClients() {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		h.remove(client)
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			client.logger.Error().Err(err).Msg("error closing client connection")
		}
	}

	h.logger.Info().Int("clients", len(clients)).Msg("closed client connections")
}

// Shutdown stops Run, closes all clients and waits for their pumps to exit
// or for ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.logger.Info().Msg("initiating hub shutdown")

	h.cancel()
	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.logger.Info().Msg("hub shutdown completed")
		return nil
	case <-ctx.Done():
		h.logger.Warn().Msg("hub shutdown timed out; some client goroutines may still be running")
		return ctx.Err()
	}
}
