package bb84

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/qkdsim/qkd/qubit"
)

// A Round records everything both parties learned about one qubit
// exchange. Each field is written exactly once, by the party that owns
// it, and the record never changes after the channel phase completes.
type Round struct {
	Index      int         `msgpack:"i"`
	AliceBit   qubit.Bit   `msgpack:"ab"`
	AliceBasis qubit.Basis `msgpack:"abs"`
	BobBasis   qubit.Basis `msgpack:"bbs"`
	BobBit     qubit.Bit   `msgpack:"bb"`
}

// A Transcript is the ordered per-round record of a single run. The ID
// labels the run artifact for logs and storage; it is not protocol
// data, and equally-seeded runs produce identical Rounds under distinct
// IDs.
type Transcript struct {
	ID     uuid.UUID `msgpack:"id"`
	Rounds []Round   `msgpack:"rounds"`
}

func newTranscript(rounds int) *Transcript {
	return &Transcript{
		ID:     uuid.New(),
		Rounds: make([]Round, rounds),
	}
}

// Encode writes t to w in msgpack framing, for callers that want to
// persist a run.
func (t *Transcript) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(t); err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	return nil
}

// DecodeTranscript reads a transcript previously written by Encode.
func DecodeTranscript(r io.Reader) (*Transcript, error) {
	var t Transcript
	if err := msgpack.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return &t, nil
}
