package qubit

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestMeasureMatchingBasis(t *testing.T) {
	src := NewSource(1)
	for _, basis := range []Basis{Rectilinear, Diagonal} {
		for _, bit := range []Bit{0, 1} {
			s := NewState(bit, basis)
			for i := 0; i < 100; i++ {
				if got := s.Measure(basis, src); got != bit {
					t.Fatalf("Measure(%v) on state (%d, %v) == %d, want %d", basis, bit, basis, got, bit)
				}
			}
		}
	}
}

func TestMeasureMismatchedBasisIsFair(t *testing.T) {
	src := NewSource(2)
	const trials = 4096
	ones := 0
	s := NewState(0, Rectilinear)
	for i := 0; i < trials; i++ {
		if s.Measure(Diagonal, src) == 1 {
			ones++
		}
	}
	// 6+ sigma band around the 50% mean.
	n := float64(trials)
	lo, hi := int(0.45*n), int(0.55*n)
	if ones < lo || ones > hi {
		t.Errorf("mismatched-basis measurement returned %d ones over %d trials, want within [%d, %d]", ones, trials, lo, hi)
	}
}

func TestCleanChannelPassthrough(t *testing.T) {
	src := NewSource(3)
	ch := NewChannel(nil)
	s := NewState(1, Diagonal)
	got := ch.Transmit(s)
	if got != s {
		t.Errorf("clean channel altered the state: got %+v, want %+v", got, s)
	}
	if bit := got.Measure(Diagonal, src); bit != 1 {
		t.Errorf("state measured %d after clean transmission, want 1", bit)
	}
}

func TestEavesdropperDisturbance(t *testing.T) {
	const trials = 8192
	src := NewSource(4)
	eve := NewEavesdropper(NewSource(5), zerolog.Nop())
	ch := NewChannel(eve)

	disturbed := 0
	for i := 0; i < trials; i++ {
		bit, basis := src.Bit(), src.Basis()
		out := ch.Transmit(NewState(bit, basis))
		// Measure in the sender's basis: any disagreement is
		// eavesdropper-induced.
		if out.Measure(basis, src) != bit {
			disturbed++
		}
	}
	// Eve guesses wrong half the time; a wrong-basis resend flips the
	// matched-basis outcome half of that. Expect 25%, allow a wide band.
	rate := float64(disturbed) / trials
	if rate < 0.18 || rate > 0.32 {
		t.Errorf("intercept-resend disturbance rate %.3f, want within [0.18, 0.32]", rate)
	}
	if got := len(eve.Guesses()); got != trials {
		t.Errorf("eavesdropper recorded %d guesses, want %d", got, trials)
	}
}

func TestEavesdropperGuessesCopies(t *testing.T) {
	eve := NewEavesdropper(NewSource(6), zerolog.Nop())
	ch := NewChannel(eve)
	ch.Transmit(NewState(1, Rectilinear))
	g := eve.Guesses()
	g[0] ^= 1
	if eve.Guesses()[0] == g[0] {
		t.Errorf("mutating Guesses() result changed the audit trail")
	}
}

func TestSourceDeterminism(t *testing.T) {
	a, b := NewSource(42), NewSource(42)
	for i := 0; i < 1000; i++ {
		if a.Bit() != b.Bit() {
			t.Fatalf("equally-seeded sources diverged on bit %d", i)
		}
		if a.Basis() != b.Basis() {
			t.Fatalf("equally-seeded sources diverged on basis %d", i)
		}
	}
}
