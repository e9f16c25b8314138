// qkdsim runs a single simulated quantum key distribution exchange and
// reports the verdict, the observed error rate, and the negotiated key.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/qkdsim/qkd/bb84"
	"github.com/qkdsim/qkd/e91"
	"github.com/qkdsim/qkd/qubit"
)

var (
	protocol = flag.String("protocol", "bb84",
		"The protocol to simulate, bb84 or e91.")
	rounds = flag.Int("rounds", 1024,
		"The number of qubits (or entangled pairs) to exchange.")
	seed = flag.Int64("seed", 0,
		"The seed for the run's random source. 0 seeds from the clock.")
	eavesdropper = flag.Bool("eavesdropper", false,
		"Route the quantum channel through an intercept-and-resend attacker (bb84 only).")
	sampleFraction = flag.Float64("sample-fraction", 0.5,
		"The proportion of the sifted key sacrificed to estimate the error rate.")
	errorThreshold = flag.Float64("error-threshold", 0.11,
		"The maximum tolerated QBER before the run aborts.")
	transcriptOut = flag.String("transcript", "",
		"If set, write the run's transcript to this file in msgpack framing (bb84 only).")
	verbose = flag.Bool("verbose", false,
		"Enable debug logging, including the eavesdropper's audit trail.")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	src := qubit.NewTimeSource()
	if *seed != 0 {
		src = qubit.NewSource(*seed)
	}

	switch *protocol {
	case "bb84":
		runBB84(log, src)
	case "e91":
		runE91(log, src)
	default:
		log.Fatal().Str("protocol", *protocol).Msg("unknown protocol")
	}
}

func runBB84(log zerolog.Logger, src *qubit.Source) {
	res, err := bb84.Run(bb84.Options{
		Rounds:         *rounds,
		Rand:           src,
		Eavesdropper:   *eavesdropper,
		SampleFraction: *sampleFraction,
		ErrorThreshold: *errorThreshold,
		Logger:         &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("protocol run failed")
	}

	fmt.Printf("verdict:  %v\n", res.Verdict)
	fmt.Printf("qber:     %.4f  (95%% CI [%.4f, %.4f])\n", res.QBER, res.QBERLow, res.QBERHigh)
	fmt.Printf("sifted:   %d of %d rounds\n", res.SiftedLength, *rounds)
	fmt.Printf("sampled:  %d bits\n", res.SampleSize)
	if res.FinalKey != nil {
		fmt.Printf("key bits: %d\n", res.FinalKey.Size())
		fmt.Printf("key hex:  %s\n", res.FinalKey.Hex())
	}

	if *transcriptOut != "" {
		f, err := os.Create(*transcriptOut)
		if err != nil {
			log.Fatal().Err(err).Msg("creating transcript file")
		}
		defer f.Close()
		if err := res.Transcript.Encode(f); err != nil {
			log.Fatal().Err(err).Msg("writing transcript")
		}
		log.Info().
			Str("path", *transcriptOut).
			Stringer("run", res.Transcript.ID).
			Msg("transcript written")
	}

	if res.Verdict != bb84.Accept {
		os.Exit(1)
	}
}

func runE91(log zerolog.Logger, src *qubit.Source) {
	res, err := e91.Run(e91.Options{
		Pairs:  *rounds,
		Rand:   src,
		Logger: &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("protocol run failed")
	}

	fmt.Printf("verdict:     %v\n", res.Verdict)
	fmt.Printf("correlation: %.4f\n", res.Correlation)
	fmt.Printf("sifted:      %d of %d pairs\n", res.SiftedLength, *rounds)
	if res.Key != nil {
		fmt.Printf("key bits:    %d\n", res.Key.Size())
		fmt.Printf("key hex:     %s\n", res.Key.Hex())
	}

	if res.Verdict != bb84.Accept {
		os.Exit(1)
	}
}
