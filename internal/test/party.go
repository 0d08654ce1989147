// Package test holds small helpers shared by package tests across the
// module, mirroring the internal/test helper the teacher package uses
// for generating deterministic party ID fixtures.
package test

import (
	"fmt"

	"github.com/playpok3r/pok3r/pkg/party"
)

// PartyIDs returns n deterministic party identities, suitable for
// building a party.Book in tests without caring about real network
// addresses.
func PartyIDs(n int) []party.ID {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("party-%d", i+1))
	}
	return ids
}
