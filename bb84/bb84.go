// Package bb84 simulates negotiating a shared secret using the BB84
// protocol: Alice prepares qubits in random bases, Bob measures them in
// random bases, the parties sift away mismatched rounds over a public
// channel, and a sacrificed sample of the sifted key estimates the
// error rate that an eavesdropper cannot avoid inducing.
package bb84

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/qkdsim/qkd/bitarray"
	"github.com/qkdsim/qkd/qubit"
)

// ErrConfig is wrapped by every error returned for a nonsensical
// Options value. Configuration is rejected before any simulation work
// begins, never silently clamped.
var ErrConfig = errors.New("invalid configuration")

// A Verdict is the protocol's judgement of a completed run. It is an
// ordinary result value, not an error: an aborted or inconclusive run
// is the protocol working as designed.
type Verdict int

const (
	// Accept certifies the final key: the observed error rate stayed
	// within the configured threshold.
	Accept Verdict = iota

	// Abort rejects the run: the observed error rate exceeded the
	// threshold, consistent with eavesdropping on the quantum channel.
	Abort

	// Indeterminate means the run produced no usable error estimate
	// (empty sifted key or empty sample). Unlike Abort it signals
	// "rerun with more rounds", not "discard, possibly compromised".
	Indeterminate
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "ACCEPT"
	case Abort:
		return "ABORT"
	case Indeterminate:
		return "INDETERMINATE"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// An Options packages together the arguments necessary to run a key
// exchange. SampleFraction and ErrorThreshold have no reasonable
// defaults and must be set explicitly.
type Options struct {
	// Rounds is the number of qubits Alice prepares and sends. Must be
	// positive.
	Rounds int

	// Rand supplies all of the run's randomness. Optional; when nil the
	// run seeds itself from the clock and is not reproducible. A Source
	// must never be shared with a concurrent run.
	Rand *qubit.Source

	// Eavesdropper routes the quantum channel through an
	// intercept-and-resend attacker. The attacker draws from its own
	// subordinate Source, seeded from Rand, so that tapped and clean
	// runs with the same seed share Alice's random stream.
	Eavesdropper bool

	// SampleFraction is the proportion of the sifted key publicly
	// sacrificed to estimate the error rate, in (0, 1]. A larger sample
	// tightens the estimate but consumes more of the key.
	SampleFraction float64

	// ErrorThreshold is the maximum observed QBER tolerated before the
	// run is treated as compromised, in [0, 1].
	ErrorThreshold float64

	// Logger receives phase-level debug logging and the eavesdropper's
	// audit trail. Optional; nil discards everything.
	Logger *zerolog.Logger
}

func (o Options) validate() error {
	if o.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrConfig, o.Rounds)
	}
	if o.SampleFraction <= 0 || o.SampleFraction > 1 {
		return fmt.Errorf("%w: sample fraction must be in (0, 1], got %v", ErrConfig, o.SampleFraction)
	}
	if o.ErrorThreshold < 0 || o.ErrorThreshold > 1 {
		return fmt.Errorf("%w: error threshold must be in [0, 1], got %v", ErrConfig, o.ErrorThreshold)
	}
	return nil
}

// A Result reports the outcome of a single run.
type Result struct {
	// FinalKey is the negotiated secret. It is non-nil if and only if
	// Verdict is Accept, so callers can never mistake an absent key for
	// a valid zero-length one.
	FinalKey *bitarray.Dense

	// QBER is the error rate observed on the sacrificed sample. NaN
	// when the run was Indeterminate.
	QBER float64

	// QBERLow and QBERHigh bound QBER with a 95% Wald interval, making
	// the confidence cost of a small SampleFraction visible. NaN when
	// the run was Indeterminate.
	QBERLow, QBERHigh float64

	// Verdict is the protocol's judgement of the run.
	Verdict Verdict

	// SiftedLength is the number of rounds surviving basis sifting.
	SiftedLength int

	// SampleSize is the number of sifted bits sacrificed for
	// estimation.
	SampleSize int

	// Sample lists the sifted-key positions publicly revealed for
	// estimation, ascending. Bits at these positions never appear in
	// FinalKey.
	Sample []int

	// Transcript records every round for audit or persistence.
	Transcript *Transcript
}

// Run executes one complete BB84 exchange and reports its outcome. The
// returned error is non-nil only for configuration mistakes; protocol
// outcomes, including Abort, arrive through Result.Verdict.
func Run(opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "bb84").Logger()

	src := opts.Rand
	if src == nil {
		src = qubit.NewTimeSource()
	}
	var eve *qubit.Eavesdropper
	if opts.Eavesdropper {
		eve = qubit.NewEavesdropper(qubit.NewSource(src.Int63()), log)
	}
	channel := qubit.NewChannel(eve)

	tr := newTranscript(opts.Rounds)
	for i := 0; i < opts.Rounds; i++ {
		aBit, aBasis := src.Bit(), src.Basis()
		arrived := channel.Transmit(qubit.NewState(aBit, aBasis))
		bBasis := src.Basis()
		tr.Rounds[i] = Round{
			Index:      i,
			AliceBit:   aBit,
			AliceBasis: aBasis,
			BobBasis:   bBasis,
			BobBit:     arrived.Measure(bBasis, src),
		}
	}

	sk := sift(tr)
	log.Debug().
		Stringer("run", tr.ID).
		Int("rounds", opts.Rounds).
		Int("sifted", sk.size()).
		Msg("sifted transcript")

	res := Result{
		QBER:         math.NaN(),
		QBERLow:      math.NaN(),
		QBERHigh:     math.NaN(),
		Verdict:      Indeterminate,
		SiftedLength: sk.size(),
		Transcript:   tr,
	}
	if sk.size() == 0 {
		log.Warn().Stringer("run", tr.ID).Msg("no rounds survived sifting; run is indeterminate")
		return res, nil
	}

	sample := sampleIndices(src, sk.size(), opts.SampleFraction)
	est := estimate(sk, sample)
	res.QBER = est.qber
	res.QBERLow = est.lo
	res.QBERHigh = est.hi
	res.SampleSize = est.size
	res.Sample = sample
	if est.size == 0 {
		log.Warn().Stringer("run", tr.ID).Msg("sample rounded to zero bits; run is indeterminate")
		return res, nil
	}
	if est.qber > opts.ErrorThreshold {
		res.Verdict = Abort
		log.Warn().
			Stringer("run", tr.ID).
			Float64("qber", est.qber).
			Float64("threshold", opts.ErrorThreshold).
			Msg("error rate over threshold; aborting")
		return res, nil
	}

	key := finalize(sk, sample)
	res.Verdict = Accept
	res.FinalKey = &key
	log.Debug().
		Stringer("run", tr.ID).
		Float64("qber", est.qber).
		Int("key_bits", key.Size()).
		Msg("key accepted")
	return res, nil
}
