package chat

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock hands out a fixed time that tests advance by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	c := NewCoordinator(NewRegistry(), NewDirectory(), NewHistoryWithClock(clock.Now), WithClock(clock.Now))
	return c, clock
}

func connect(t *testing.T, c *Coordinator, userID, username string) *Session {
	t.Helper()
	s, _, err := c.Connect(Handle("conn-"+userID), userID, username)
	require.NoError(t, err)
	require.True(t, s.Active())
	return s
}

// deliveredTo returns the outbound events addressed to h, in order.
func deliveredTo(out []Outbound, h Handle) []Outbound {
	var got []Outbound
	for _, o := range out {
		if slices.Contains(o.To, h) {
			got = append(got, o)
		}
	}
	return got
}

func eventNames(out []Outbound) []string {
	names := make([]string, 0, len(out))
	for _, o := range out {
		names = append(names, o.Event)
	}
	return names
}

func findEvent(t *testing.T, out []Outbound, event string) Outbound {
	t.Helper()
	for _, o := range out {
		if o.Event == event {
			return o
		}
	}
	require.Failf(t, "event not emitted", "want %q in %v", event, eventNames(out))
	return Outbound{}
}
