// Package e91 simulates the entangled-pair variant of quantum key
// distribution. A source emits maximally entangled qubit pairs; Alice
// and Bob each measure their half in an independently random basis.
// Matching bases observe perfectly correlated outcomes, mismatched
// bases observe independent coin flips, and sifting on the published
// bases leaves both parties holding the same bit string.
package e91

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/qkdsim/qkd/bb84"
	"github.com/qkdsim/qkd/bitarray"
	"github.com/qkdsim/qkd/qubit"
)

// An Options packages together the arguments necessary to run an
// entangled-pair exchange.
type Options struct {
	// Pairs is the number of entangled pairs the source emits. Must be
	// positive.
	Pairs int

	// Rand supplies all of the run's randomness. Optional; when nil the
	// run seeds itself from the clock and is not reproducible.
	Rand *qubit.Source

	// Logger receives phase-level debug logging. Optional.
	Logger *zerolog.Logger
}

// A Result reports the outcome of a single entangled-pair run.
type Result struct {
	// Key is the sifted shared secret, present only when Verdict is
	// Accept.
	Key *bitarray.Dense

	// Correlation is the fraction of sifted positions where the
	// parties' outcomes agree. In this noise-free model it is 1 for any
	// non-empty sifted key.
	Correlation float64

	// Verdict is Accept when the sifted outcomes are perfectly
	// correlated, Abort when they are not, and Indeterminate when no
	// pair survived sifting.
	Verdict bb84.Verdict

	// SiftedLength is the number of pairs surviving basis sifting.
	SiftedLength int
}

// Run executes one entangled-pair exchange. As with the BB84 runner,
// the returned error covers configuration mistakes only.
func Run(opts Options) (Result, error) {
	if opts.Pairs <= 0 {
		return Result{}, fmt.Errorf("%w: pairs must be positive, got %d", bb84.ErrConfig, opts.Pairs)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "e91").Logger()

	src := opts.Rand
	if src == nil {
		src = qubit.NewTimeSource()
	}

	var aliceBits, bobBits, mask bitarray.Dense
	for i := 0; i < opts.Pairs; i++ {
		aBasis, bBasis := src.Basis(), src.Basis()
		var aBit, bBit qubit.Bit
		if aBasis == bBasis {
			// Same observable on both halves of an entangled pair:
			// one shared, uniformly random outcome.
			aBit = src.Bit()
			bBit = aBit
		} else {
			aBit = src.Bit()
			bBit = src.Bit()
		}
		aliceBits.AppendBit(aBit == 1)
		bobBits.AppendBit(bBit == 1)
		mask.AppendBit(aBasis == bBasis)
	}

	aliceKey := aliceBits.Select(mask)
	bobKey := bobBits.Select(mask)
	res := Result{
		Correlation:  math.NaN(),
		Verdict:      bb84.Indeterminate,
		SiftedLength: aliceKey.Size(),
	}
	if aliceKey.Size() == 0 {
		log.Warn().Msg("no pairs survived sifting; run is indeterminate")
		return res, nil
	}

	mismatches := aliceKey.XOr(bobKey).Ones()
	res.Correlation = 1 - float64(mismatches)/float64(aliceKey.Size())
	if mismatches != 0 {
		res.Verdict = bb84.Abort
		log.Warn().
			Int("mismatches", mismatches).
			Msg("sifted outcomes decorrelated; aborting")
		return res, nil
	}

	res.Verdict = bb84.Accept
	res.Key = &aliceKey
	log.Debug().
		Int("pairs", opts.Pairs).
		Int("key_bits", aliceKey.Size()).
		Msg("key accepted")
	return res, nil
}
