// Package networking implements the broadcast/collect façade the
// evaluator uses to talk to the other parties (component 4.C), plus an
// in-process substitute for the real P2P transport so the protocol
// can run end to end in tests and in the CLI demo without standing up
// an actual network daemon. A production deployment implements the
// same Broadcaster interface over a real transport without touching
// the evaluator.
package networking

import (
	"context"
	"sync"

	"github.com/playpok3r/pok3r/pkg/party"
)

// Broadcaster is the network-facing interface the evaluator depends
// on: broadcast a labeled message to everyone (including the caller),
// and collect every party's contribution under that label.
type Broadcaster interface {
	Broadcast(ctx context.Context, label string, payload []byte) error
	Collect(ctx context.Context, label string, n int) (map[party.ID][]byte, error)
}

// LocalBus is an in-process Broadcaster shared by every Evaluator
// running in the same process. It has no notion of faulty or slow
// parties beyond blocking until n contributions for a label arrive,
// which is exactly the "all parties... including self" semantics
// component 4.C specifies.
type LocalBus struct {
	mu      sync.Mutex
	msgs    map[string]map[party.ID][]byte
	waiters map[string][]chan struct{}
}

// NewLocalBus constructs an empty bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{
		msgs:    make(map[string]map[party.ID][]byte),
		waiters: make(map[string][]chan struct{}),
	}
}

// Endpoint returns a Broadcaster bound to a specific sender identity,
// so each Evaluator can call Broadcast without repeating its own ID.
func (b *LocalBus) Endpoint(self party.ID) Broadcaster {
	return &localEndpoint{bus: b, self: self}
}

func (b *LocalBus) put(label string, from party.ID, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.msgs[label]
	if !ok {
		m = make(map[party.ID][]byte)
		b.msgs[label] = m
	}
	m[from] = payload
	for _, w := range b.waiters[label] {
		close(w)
	}
	delete(b.waiters, label)
}

func (b *LocalBus) get(ctx context.Context, label string, n int) (map[party.ID][]byte, error) {
	for {
		b.mu.Lock()
		if len(b.msgs[label]) >= n {
			result := make(map[party.ID][]byte, n)
			for k, v := range b.msgs[label] {
				result[k] = v
			}
			b.mu.Unlock()
			return result, nil
		}
		woken := make(chan struct{})
		b.waiters[label] = append(b.waiters[label], woken)
		b.mu.Unlock()

		select {
		case <-woken:
			// loop around and re-check the count
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type localEndpoint struct {
	bus  *LocalBus
	self party.ID
}

func (e *localEndpoint) Broadcast(ctx context.Context, label string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.bus.put(label, e.self, payload)
	return nil
}

func (e *localEndpoint) Collect(ctx context.Context, label string, n int) (map[party.ID][]byte, error) {
	return e.bus.get(ctx, label, n)
}
