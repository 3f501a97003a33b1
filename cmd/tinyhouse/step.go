package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/engine"
)

func step(args []string) error {
	fs := flag.NewFlagSet("step", flag.ContinueOnError)
	steps := fs.Int("steps", 200, "maximum plies to play")
	seed := fs.Uint64("seed", 0, "random seed, 0 for a fresh one")
	layout := fs.String("layout", board.DefaultStartingLayout, "starting layout")
	delay := fs.Duration("delay", 0, "pause between plies")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	b, err := board.NewBoard(board.WithLayout(*layout))
	if err != nil {
		return err
	}
	rng := newRNG(*seed)

	var (
		timesGenerateMoves []time.Duration
		timesApply         []time.Duration
		timesState         []time.Duration
		history            []board.Move
	)
	root := b.Clone()
	st := b.State()
	for i := 0; i < *steps && st.IsRunning(); i++ {
		t1 := time.Now()
		mvs := b.GenerateMoves()
		timesGenerateMoves = append(timesGenerateMoves, time.Since(t1))
		mv := mvs[rng.Intn(len(mvs))]
		turn := b.Turn()

		t1 = time.Now()
		b.Apply(mv)
		timesApply = append(timesApply, time.Since(t1))
		history = append(history, mv)

		t1 = time.Now()
		st = b.State()
		timesState = append(timesState, time.Since(t1))

		fmt.Printf("\n===== [#%d] %s: %s\n", i/2+1, turn, mv)
		fmt.Println(b.Draw())
		fmt.Println(b.Layout())
		fmt.Println(b.DebugString())
		if *delay > 0 {
			<-time.After(*delay)
		}
	}

	avg := func(ds []time.Duration) time.Duration {
		if len(ds) == 0 {
			return 0
		}
		var s time.Duration
		for _, d := range ds {
			s += d
		}
		return s / time.Duration(len(ds))
	}

	fmt.Println()
	fmt.Println(engine.DumpHistory(root, history))
	log.Info().
		Str("state", st.String()).
		Str("winner", st.Winner(b.Turn()).String()).
		Dur("genmv", avg(timesGenerateMoves)).
		Dur("apply", avg(timesApply)).
		Dur("state-eval", avg(timesState)).
		Msg("step-done")
	return nil
}

// newRNG returns a ChaCha stream keyed by seed, or the shared entropy source
// when seed is zero.
func newRNG(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}
