package bb84

import (
	"github.com/qkdsim/qkd/bitarray"
	"github.com/qkdsim/qkd/qubit"
)

// A siftedKey is the post-sifting view of a transcript: both parties'
// bits at the positions where their bases agreed, plus the transcript
// indices those positions came from. It is derived once and never
// mutated.
type siftedKey struct {
	indices []int
	alice   bitarray.Dense
	bob     bitarray.Dense
}

func (sk siftedKey) size() int {
	return sk.alice.Size()
}

// sift discards every round where the parties measured in different
// bases. Only basis choices cross the public channel, never bits. Order
// is preserved, and a transcript with no agreeing rounds sifts to an
// empty key rather than an error.
func sift(t *Transcript) siftedKey {
	var aBits, bBits, aBases, bBases bitarray.Dense
	for _, r := range t.Rounds {
		aBits.AppendBit(r.AliceBit == 1)
		bBits.AppendBit(r.BobBit == 1)
		aBases.AppendBit(r.AliceBasis == qubit.Diagonal)
		bBases.AppendBit(r.BobBasis == qubit.Diagonal)
	}
	mask := aBases.XNor(bBases)
	sk := siftedKey{
		alice: aBits.Select(mask),
		bob:   bBits.Select(mask),
	}
	for i := range t.Rounds {
		if mask.Get(i) {
			sk.indices = append(sk.indices, i)
		}
	}
	return sk
}
