package bb84

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/qkdsim/qkd/bitarray"
	"github.com/qkdsim/qkd/qubit"
)

type estimateResult struct {
	qber       float64
	lo, hi     float64
	size       int
	mismatches int
}

// sampleIndices picks round(fraction*n) positions of an n-bit sifted
// key to sacrifice, uniformly without replacement via a seeded
// permutation, returned in ascending order. Both parties derive the
// same set because the permutation seed is shared; under a fixed run
// seed the selection is fully reproducible.
func sampleIndices(src *qubit.Source, n int, fraction float64) []int {
	k := int(math.Round(fraction * float64(n)))
	if k <= 0 {
		return nil
	}
	idx := src.Perm(n)[:k]
	sort.Ints(idx)
	return idx
}

// estimate compares the parties' bits at the sampled positions and
// reports the observed QBER with a 95% Wald interval. An empty sample
// yields NaN rates, never a division fault; the caller reports that as
// an indeterminate run.
func estimate(sk siftedKey, sample []int) estimateResult {
	if len(sample) == 0 {
		return estimateResult{qber: math.NaN(), lo: math.NaN(), hi: math.NaN()}
	}
	mismatches := 0
	for _, i := range sample {
		if sk.alice.Get(i) != sk.bob.Get(i) {
			mismatches++
		}
	}
	n := float64(len(sample))
	qber := float64(mismatches) / n
	half := distuv.UnitNormal.Quantile(0.975) * math.Sqrt(qber*(1-qber)/n)
	return estimateResult{
		qber:       qber,
		lo:         math.Max(0, qber-half),
		hi:         math.Min(1, qber+half),
		size:       len(sample),
		mismatches: mismatches,
	}
}

// finalize strips the publicly-revealed sample positions from the
// sifted key, in original order, leaving the raw shared secret. Alice's
// bits define the key; Bob derives his copy the same way from his own
// measured bits, which match hers wherever the channel was undisturbed.
func finalize(sk siftedKey, sample []int) bitarray.Dense {
	var key bitarray.Dense
	j := 0
	for i := 0; i < sk.size(); i++ {
		if j < len(sample) && sample[j] == i {
			j++
			continue
		}
		key.AppendBit(sk.alice.Get(i))
	}
	return key
}
