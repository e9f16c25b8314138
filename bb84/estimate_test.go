package bb84

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/qkdsim/qkd/bitarray"
	"github.com/qkdsim/qkd/qubit"
)

// transcriptFor builds a transcript from explicit bases, with Bob's
// bits copied from Alice's wherever the bases agree and inverted
// elsewhere, so agreement is attributable purely to sifting.
func transcriptFor(aliceBits []qubit.Bit, aliceBases, bobBases []qubit.Basis) *Transcript {
	tr := &Transcript{Rounds: make([]Round, len(aliceBits))}
	for i := range aliceBits {
		bobBit := aliceBits[i]
		if aliceBases[i] != bobBases[i] {
			bobBit ^= 1
		}
		tr.Rounds[i] = Round{
			Index:      i,
			AliceBit:   aliceBits[i],
			AliceBasis: aliceBases[i],
			BobBasis:   bobBases[i],
			BobBit:     bobBit,
		}
	}
	return tr
}

func TestSiftExample(t *testing.T) {
	rec, diag := qubit.Rectilinear, qubit.Diagonal
	tr := transcriptFor(
		[]qubit.Bit{1, 0, 1, 1, 0, 0, 1, 0},
		[]qubit.Basis{rec, diag, rec, rec, diag, diag, rec, diag},
		[]qubit.Basis{rec, rec, rec, diag, diag, diag, diag, rec},
	)
	sk := sift(tr)
	if want := []int{0, 2, 4, 5}; !reflect.DeepEqual(sk.indices, want) {
		t.Fatalf("sifted indices == %v, want %v", sk.indices, want)
	}
	if sk.size() != 4 {
		t.Fatalf("sifted size == %d, want 4", sk.size())
	}
	want := bitarray.Empty()
	for _, b := range []bool{true, true, false, false} { // bits 1,1,0,0 at rounds 0,2,4,5
		want.AppendBit(b)
	}
	if !sk.alice.Equal(want) {
		t.Errorf("sifted alice bits == %v, want %v", sk.alice, want)
	}
	if !sk.bob.Equal(want) {
		t.Errorf("sifted bob bits == %v, want %v", sk.bob, want)
	}
}

func TestSampleIndices(t *testing.T) {
	tcs := []struct {
		name     string
		n        int
		fraction float64
		esize    int
	}{
		{name: "half of even", n: 100, fraction: 0.5, esize: 50},
		{name: "rounds to nearest", n: 10, fraction: 0.25, esize: 2},
		{name: "everything", n: 8, fraction: 1, esize: 8},
		{name: "rounds to zero", n: 4, fraction: 0.01, esize: 0},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			idx := sampleIndices(qubit.NewSource(1), tc.n, tc.fraction)
			if len(idx) != tc.esize {
				t.Fatalf("sample size == %d, want %d", len(idx), tc.esize)
			}
			if !sort.IntsAreSorted(idx) {
				t.Errorf("sample %v is not ascending", idx)
			}
			seen := map[int]bool{}
			for _, i := range idx {
				if i < 0 || i >= tc.n {
					t.Errorf("sample position %d out of range [0, %d)", i, tc.n)
				}
				if seen[i] {
					t.Errorf("position %d sampled twice", i)
				}
				seen[i] = true
			}
		})
	}
}

func TestSampleIndicesReproducible(t *testing.T) {
	a := sampleIndices(qubit.NewSource(99), 1000, 0.3)
	b := sampleIndices(qubit.NewSource(99), 1000, 0.3)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("equally-seeded sampling diverged")
	}
}

func TestEstimate(t *testing.T) {
	var alice, bob bitarray.Dense
	// Eight sifted bits, two disagreements at positions 1 and 5.
	for i := 0; i < 8; i++ {
		alice.AppendBit(i%2 == 0)
		bob.AppendBit((i%2 == 0) != (i == 1 || i == 5))
	}
	sk := siftedKey{alice: alice, bob: bob}

	est := estimate(sk, []int{0, 1, 2, 3})
	if est.size != 4 || est.mismatches != 1 {
		t.Fatalf("estimate counted %d mismatches over %d, want 1 over 4", est.mismatches, est.size)
	}
	if est.qber != 0.25 {
		t.Errorf("QBER == %v, want 0.25", est.qber)
	}
	if est.lo > est.qber || est.hi < est.qber {
		t.Errorf("interval [%v, %v] does not cover the point estimate %v", est.lo, est.hi, est.qber)
	}
	if est.lo < 0 || est.hi > 1 {
		t.Errorf("interval [%v, %v] leaves [0, 1]", est.lo, est.hi)
	}

	clean := estimate(sk, []int{0, 2, 4})
	if clean.qber != 0 {
		t.Errorf("QBER == %v over agreeing positions, want 0", clean.qber)
	}

	empty := estimate(sk, nil)
	if !math.IsNaN(empty.qber) {
		t.Errorf("QBER of an empty sample == %v, want NaN", empty.qber)
	}
}

func TestFinalizeStripsSample(t *testing.T) {
	var alice bitarray.Dense
	for _, b := range []bool{true, false, true, true, false, true} {
		alice.AppendBit(b)
	}
	sk := siftedKey{alice: alice, bob: alice}

	key := finalize(sk, []int{1, 3})
	want := bitarray.Empty()
	for _, b := range []bool{true, true, false, true} { // positions 0, 2, 4, 5
		want.AppendBit(b)
	}
	if !key.Equal(want) {
		t.Errorf("finalized key == %v, want %v", key, want)
	}

	all := finalize(sk, []int{0, 1, 2, 3, 4, 5})
	if all.Size() != 0 {
		t.Errorf("finalizing with a full sample left %d bits, want 0", all.Size())
	}

	none := finalize(sk, nil)
	if !none.Equal(alice) {
		t.Errorf("finalizing with no sample == %v, want the sifted key %v", none, alice)
	}
}
