package bb84

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qkdsim/qkd/qubit"
)

func TestTranscriptRoundTrip(t *testing.T) {
	res, err := Run(Options{
		Rounds:         64,
		Rand:           qubit.NewSource(31),
		SampleFraction: 0.5,
		ErrorThreshold: 0.11,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.Transcript.Encode(&buf))

	got, err := DecodeTranscript(&buf)
	require.NoError(t, err)
	require.Equal(t, res.Transcript.ID, got.ID)
	require.Equal(t, res.Transcript.Rounds, got.Rounds)
}

func TestDecodeTranscriptRejectsGarbage(t *testing.T) {
	_, err := DecodeTranscript(bytes.NewReader([]byte("not msgpack at all")))
	require.Error(t, err)
}
