package chat

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterLookup(t *testing.T) {
	r := NewRegistry()

	_, replaced := r.Register("h1", "u1", "alice")
	assert.False(t, replaced)

	h, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, Handle("h1"), h)

	_, ok = r.Lookup("nobody")
	assert.False(t, ok)
}

func TestRegistryDuplicateOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", "u1", "alice")

	prev, replaced := r.Register("h2", "u1", "alice-2")
	assert.True(t, replaced)
	assert.Equal(t, Handle("h1"), prev)

	h, _ := r.Lookup("u1")
	assert.Equal(t, Handle("h2"), h)
	assert.Equal(t, []Identity{{ID: "u1", Username: "alice-2"}}, r.ListOnline())
}

func TestRegistryDeregister(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", "u1", "alice")

	r.Deregister("u1")
	r.Deregister("u1")
	r.Deregister("never-registered")

	assert.Empty(t, r.ListOnline())
	assert.Zero(t, r.Len())
}

func TestRegistryDeregisterHandleKeepsReplacement(t *testing.T) {
	r := NewRegistry()
	r.Register("old", "u1", "alice")
	r.Register("new", "u1", "alice")

	assert.False(t, r.DeregisterHandle("u1", "old"))
	h, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, Handle("new"), h)

	assert.True(t, r.DeregisterHandle("u1", "new"))
	assert.Zero(t, r.Len())
}

func TestRegistryHandlesOfSkipsOffline(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", "u1", "alice")
	r.Register("h3", "u3", "carol")

	assert.Equal(t, []Handle{"h1", "h3"}, r.HandlesOf([]string{"u1", "u2", "u3"}))
}

// TestRegistryListOnlineMatchesModel drives random register/deregister
// sequences and compares the snapshot with a plain map.
func TestRegistryListOnlineMatchesModel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 50; round++ {
		r := NewRegistry()
		model := map[string]string{}

		for step := 0; step < 200; step++ {
			id := fmt.Sprintf("u%d", rng.Intn(10))
			if rng.Intn(3) == 0 {
				r.Deregister(id)
				delete(model, id)
				continue
			}
			name := fmt.Sprintf("name-%d", step)
			r.Register(Handle(fmt.Sprintf("h%d", step)), id, name)
			model[id] = name
		}

		want := make([]Identity, 0, len(model))
		for id, name := range model {
			want = append(want, Identity{ID: id, Username: name})
		}
		sort.Slice(want, func(i, j int) bool { return want[i].ID < want[j].ID })

		require.Equal(t, want, r.ListOnline(), "round %d", round)
		require.Len(t, r.Handles(), len(model))
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			for j := 0; j < 100; j++ {
				r.Register(Handle(fmt.Sprintf("h%d-%d", i, j)), id, id)
				_ = r.ListOnline()
				if j%2 == 0 {
					r.Deregister(id)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
}
