package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1000)}
	h := NewHistoryWithClock(clock.Now)
	h.Init("r1")

	for _, text := range []string{"one", "two", "three"} {
		h.Append("r1", Message{From: "alice", Payload: Payload{Message: text}})
		clock.Advance(time.Millisecond)
	}

	got := h.Of("r1")
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "three", got[2].Message)
	assert.Equal(t, int64(1000), got[0].Timestamp)
	assert.Equal(t, int64(1002), got[2].Timestamp)
	for _, m := range got {
		assert.NotEmpty(t, m.ID)
	}
}

func TestHistoryTimestampsNeverDecrease(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(5000)}
	h := NewHistoryWithClock(clock.Now)

	h.Append("r1", Message{Payload: Payload{Message: "a"}})
	clock.Advance(-2 * time.Second)
	stored := h.Append("r1", Message{Payload: Payload{Message: "b"}})

	assert.Equal(t, int64(5000), stored.Timestamp)
	got := h.Of("r1")
	assert.LessOrEqual(t, got[0].Timestamp, got[1].Timestamp)
}

func TestHistoryAppendCreatesLog(t *testing.T) {
	h := NewHistory()

	h.Append("never-initialised", Message{Payload: Payload{Message: "hi"}})

	assert.Equal(t, 1, h.Len("never-initialised"))
}

func TestHistoryUnknownRoomIsEmpty(t *testing.T) {
	h := NewHistory()

	got := h.Of("unknown")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistoryOfReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Append("r1", Message{Payload: Payload{Message: "original"}})

	got := h.Of("r1")
	got[0].Message = "mutated"

	assert.Equal(t, "original", h.Of("r1")[0].Message)
}

func TestHistoryInitDoesNotReset(t *testing.T) {
	h := NewHistory()
	h.Append("r1", Message{Payload: Payload{Message: "kept"}})

	h.Init("r1")

	assert.Equal(t, 1, h.Len("r1"))
}
