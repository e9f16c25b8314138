package qubit

import "github.com/rs/zerolog"

// A Channel carries prepared states from sender to receiver. A clean
// channel is lossless and noiseless; an intercepted one routes every
// state through an Eavesdropper first.
type Channel struct {
	eve *Eavesdropper
}

// NewChannel returns a channel, tapped by eve if eve is non-nil.
func NewChannel(eve *Eavesdropper) *Channel {
	return &Channel{eve: eve}
}

// Transmit carries s across the channel. On a clean channel the state
// arrives untouched; on a tapped one the eavesdropper's re-prepared
// state arrives instead.
func (c *Channel) Transmit(s State) State {
	if c.eve == nil {
		return s
	}
	return c.eve.intercept(s)
}

// An Eavesdropper mounts an intercept-and-resend attack: it measures
// each passing state in a basis of its own choosing and forwards a
// fresh state prepared from whatever it observed. When its basis guess
// is wrong the forwarded state no longer matches the sender's, which is
// what the legitimate parties later detect as an elevated error rate.
type Eavesdropper struct {
	src     *Source
	log     zerolog.Logger
	guesses []Bit
}

// NewEavesdropper returns an Eavesdropper drawing its basis guesses and
// measurement outcomes from src.
func NewEavesdropper(src *Source, log zerolog.Logger) *Eavesdropper {
	return &Eavesdropper{
		src: src,
		log: log.With().Str("component", "eavesdropper").Logger(),
	}
}

// intercept measures s and re-prepares it, using the same measurement
// rule the legitimate receiver uses. Composing two applications of that
// rule, rather than shortcutting, is what keeps the induced disturbance
// statistics honest.
func (e *Eavesdropper) intercept(s State) State {
	basis := e.src.Basis()
	bit := s.Measure(basis, e.src)
	e.guesses = append(e.guesses, bit)
	e.log.Debug().
		Stringer("basis", basis).
		Uint8("bit", uint8(bit)).
		Msg("intercepted and re-sent qubit")
	return NewState(bit, basis)
}

// Guesses returns a copy of the bits the eavesdropper recorded, in
// interception order. The audit trail is observational only; nothing in
// sifting or estimation consults it.
func (e *Eavesdropper) Guesses() []Bit {
	out := make([]Bit, len(e.guesses))
	copy(out, e.guesses)
	return out
}
