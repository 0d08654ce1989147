// Package shuffle implements the distributed PRF shuffle (component
// 4.E): parties jointly sample a secret key sk, then for each of the
// 64 cards derive y = g^(1/(sk+card)) until 64 distinct values have
// been produced, fixing the positions of a reserved block of cards
// (grounded on shuffle_deck in original_source/src/main.rs) so their
// slot in the deck never depends on sk.
package shuffle

import (
	"context"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/playpok3r/pok3r/internal/log"
	"github.com/playpok3r/pok3r/pkg/curve"
	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/poly"
)

// reservedFrom is the first index whose card is pinned in place
// rather than drawn from the PRF, matching the original's range
// 52..64 (the last 12 slots of a 64-slot deck).
const reservedFrom = 52

// MaxShuffleTrials bounds how many draw attempts the non-reserved
// loop below makes before giving up. The original source leaves this
// loop unbounded (a flagged TODO); a hard cap turns PRF-draw exhaustion
// into a reported error instead of an infinite wait. Exported so tests
// can lower it to exercise the abort path deterministically.
var MaxShuffleTrials = 10000

// errShuffleTrialsExceeded is returned when ShuffleDeck gives up after
// MaxShuffleTrials draw attempts without completing the deck.
var errShuffleTrialsExceeded = shuffleErr("shuffle: trial cap exceeded before 64 distinct cards were drawn")

type shuffleErr string

func (e shuffleErr) Error() string { return string(e) }

// Deck is the output of ShuffleDeck: one handle and its locally known
// share per card. Slots 0..51 hold the PRF-drawn cards in the order
// they were found; slots 52..63 hold the reserved cards ω^52..ω^63.
type Deck struct {
	Handles []evaluator.Handle
	Shares  []fr.Element
}

// ShuffleDeck runs the distributed shuffle protocol to completion,
// returning a handle and local share for each of the 64 cards. No
// party (and no coalition smaller than all of them) learns the
// mapping between cards and deck positions at any point.
func ShuffleDeck(ctx context.Context, e *evaluator.Evaluator) (Deck, error) {
	logger := log.For("shuffle")
	logger.Info().Msg("starting shuffle")

	domain := e.Domain()
	sk := e.Ran()

	var deck, reserved Deck
	seen := make(map[curve.G1]bool)

	for i := reservedFrom; i < 64; i++ {
		hR := e.Ran()
		ta, tb, tc := e.Beaver()

		omegaPowI := domain.ComputePower(uint64(i))
		denom := e.ClearAdd(sk, omegaPowI)
		tI, err := e.Inv(ctx, denom, hR, ta, tb, tc)
		if err != nil {
			return Deck{}, err
		}
		yI, err := e.OutputWireInExponent(ctx, tI)
		if err != nil {
			return Deck{}, err
		}
		seen[yI] = true

		handle := e.FixedWireHandle(omegaPowI)
		reserved.Handles = append(reserved.Handles, handle)
		reserved.Shares = append(reserved.Shares, e.GetWire(handle))
	}

	trials := 0
	for len(deck.Shares) < reservedFrom {
		trials++
		if trials > MaxShuffleTrials {
			logger.Warn().Int("trials", trials-1).Int("cards_found", len(deck.Shares)).Msg("shuffle trial cap exceeded")
			return Deck{}, errShuffleTrialsExceeded
		}

		hR := e.Ran()
		ta, tb, tc := e.Beaver()

		aI := e.Ran()
		cI, err := e.Ran64(ctx, aI)
		if err != nil {
			return Deck{}, err
		}
		tI := e.Add(cI, sk)
		tInv, err := e.Inv(ctx, tI, hR, ta, tb, tc)
		if err != nil {
			return Deck{}, err
		}
		yI, err := e.OutputWireInExponent(ctx, tInv)
		if err != nil {
			return Deck{}, err
		}

		if seen[yI] {
			continue
		}
		seen[yI] = true
		deck.Handles = append(deck.Handles, cI)
		deck.Shares = append(deck.Shares, e.GetWire(cI))
	}
	deck.Handles = append(deck.Handles, reserved.Handles...)
	deck.Shares = append(deck.Shares, reserved.Shares...)

	logger.Info().Int("cards", len(deck.Handles)).Msg("shuffle complete")
	return deck, nil
}

// CardNames maps each power ω^i (i = 0..63) to a human readable card
// label, grounded on map_roots_of_unity_to_cards. Slots 52..63 are
// labelled as reserved/joker slots, matching the commented-out block
// in the original for the 12 extra positions.
func CardNames(domain *poly.Domain) map[fr.Element]string {
	out := make(map[fr.Element]string, 64)
	for i := 0; i < 64; i++ {
		out[domain.ComputePower(uint64(i))] = cardLabel(i)
	}
	return out
}

func cardLabel(i int) string {
	if i >= reservedFrom {
		return "Joker"
	}
	suits := [4]string{"Clubs", "Diamonds", "Hearts", "Spades"}
	ranks := [13]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	return ranks[i%13] + " of " + suits[i/13]
}
