package networking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/pkg/networking"
	"github.com/playpok3r/pok3r/pkg/party"
)

func TestBroadcastCollectRendezvous(t *testing.T) {
	bus := networking.NewLocalBus()
	ids := []party.ID{"a", "b", "c"}

	var wg sync.WaitGroup
	results := make(map[party.ID]map[party.ID][]byte, len(ids))
	var mu sync.Mutex

	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			ep := bus.Endpoint(id)
			ctx := context.Background()
			err := ep.Broadcast(ctx, "round-1", []byte(id))
			require.NoError(t, err)
			msgs, err := ep.Collect(ctx, "round-1", len(ids))
			require.NoError(t, err)
			mu.Lock()
			results[id] = msgs
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, results, 3)
	for _, msgs := range results {
		require.Len(t, msgs, 3)
		for _, id := range ids {
			assert.Equal(t, []byte(id), msgs[id])
		}
	}
}

func TestCollectCancelsOnContextDone(t *testing.T) {
	bus := networking.NewLocalBus()
	ep := bus.Endpoint("only-one")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, ep.Broadcast(context.Background(), "stuck", []byte("x")))
	_, err := ep.Collect(ctx, "stuck", 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
