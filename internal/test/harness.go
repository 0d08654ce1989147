package test

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/networking"
	"github.com/playpok3r/pok3r/pkg/party"
	"github.com/playpok3r/pok3r/pkg/poly"
	"github.com/playpok3r/pok3r/pkg/preprocess"
)

// RunParties spins up n evaluators sharing one in-process LocalBus and a
// fresh batch of Beaver triples, runs fn concurrently against each one,
// and returns fn's per-party results in book order. It exists so every
// package's tests that exercise the evaluator (shuffle, permutation,
// ibeproof) don't each reimplement the same multi-party setup.
func RunParties[T any](n, triplesPerParty int, fn func(ctx context.Context, e *evaluator.Evaluator) (T, error)) ([]T, error) {
	book := party.NewBook(PartyIDs(n))
	domain := poly.NewDomain()
	bus := networking.NewLocalBus()
	dealer := preprocess.NewDealer(book)
	triples := dealer.Generate(triplesPerParty)

	results := make([]T, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i, id := range book.IDs() {
		i, id := i, id
		self := party.NewSelf(id, book)
		ev := evaluator.New(self, bus.Endpoint(self.ID), domain, triples[id])
		g.Go(func() error {
			res, err := fn(ctx, ev)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
