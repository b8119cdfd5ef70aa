// Package server is the WebSocket and HTTP transport of the chat server.
//
// A Hub tracks one Client per WebSocket connection. Each client's read pump
// turns inbound frames into calls on a chat.Coordinator and hands the
// resulting Outbound events back to the hub, which queues one JSON envelope
// per frame on every addressed client. The package also serves health,
// read-only JSON views of users, rooms and history, and Prometheus metrics.
package server
