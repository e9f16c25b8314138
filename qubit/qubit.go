// Package qubit models polarization-encoded qubits at the level BB84
// needs: a state remembers the bit and basis that prepared it, and
// measuring in the matching basis recovers the bit exactly while
// measuring in the conjugate basis yields a fair coin flip.
package qubit

// A Bit is a classical bit, 0 or 1.
type Bit byte

// A Basis is a choice of measurement observable. Rectilinear and
// Diagonal are conjugate: a state prepared in one carries no
// information recoverable in the other.
type Basis byte

const (
	Rectilinear Basis = iota // +
	Diagonal                 // x
)

// String implements fmt.Stringer using the conventional +/x notation.
func (b Basis) String() string {
	if b == Diagonal {
		return "x"
	}
	return "+"
}

// A State is a prepared qubit in flight. Its fields are deliberately
// unexported: the receiving party learns nothing about a State except
// through Measure.
type State struct {
	bit   Bit
	basis Basis
}

// NewState prepares a qubit encoding bit in the given basis.
func NewState(bit Bit, basis Basis) State {
	return State{bit: bit, basis: basis}
}

// Measure observes s in the given basis, drawing from src when the
// outcome is indeterminate. A matching basis returns the encoded bit
// with certainty; a mismatched basis returns a uniformly random bit,
// independent of the encoded one.
func (s State) Measure(basis Basis, src *Source) Bit {
	if basis == s.basis {
		return s.bit
	}
	return src.Bit()
}
