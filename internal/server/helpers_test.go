package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
)

const testOrigin = "http://localhost:8080"

// newTestServer starts a Server behind httptest with its hub running. Both
// are shut down when the test ends.
func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()

	if cfg == nil {
		cfg = NewConfig()
	}
	coord := chat.NewCoordinator(chat.NewRegistry(), chat.NewDirectory(), chat.NewHistory())
	srv := New(*cfg, coord, zerolog.Nop())
	go srv.Hub().Run()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Hub().Shutdown(ctx)
		ts.Close()
	})
	return srv, ts
}

func wsURL(t *testing.T, ts *httptest.Server, userID, username string) string {
	t.Helper()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"
	q := u.Query()
	if userID != "" {
		q.Set("userId", userID)
	}
	if username != "" {
		q.Set("username", username)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// dial opens a WebSocket as userID/username from the allowed test origin.
func dial(t *testing.T, ts *httptest.Server, userID, username string) *websocket.Conn {
	t.Helper()

	conn, resp, err := dialWithOrigin(t, ts, userID, username, testOrigin)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func dialWithOrigin(t *testing.T, ts *httptest.Server, userID, username, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	return dialer.Dial(wsURL(t, ts, userID, username), headers)
}

// send writes one event envelope.
func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(chat.Envelope{Event: event, Data: raw}))
}

// readEvent reads the next envelope, failing after a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) chat.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env chat.Envelope
	require.NoError(t, json.Unmarshal(raw, &env), "frame must hold exactly one envelope: %s", raw)
	return env
}

// expectEvent skips envelopes until one named event arrives and decodes its
// data into v.
func expectEvent(t *testing.T, conn *websocket.Conn, event string, v any) {
	t.Helper()

	for i := 0; i < 50; i++ {
		env := readEvent(t, conn)
		if env.Event != event {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(env.Data, v))
		}
		return
	}
	t.Fatalf("event %q not received", event)
}

// expectSilence asserts that nothing arrives within d.
func expectSilence(t *testing.T, conn *websocket.Conn, d time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(d)))
	_, raw, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", raw)
}

// drainConnect consumes the snapshot a fresh connection receives when no
// rooms exist: user-list then room-list.
func drainConnect(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	expectEvent(t, conn, chat.EventUserList, nil)
	expectEvent(t, conn, chat.EventRoomList, nil)
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) *http.Response {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}
