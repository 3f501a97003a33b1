package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/daystram/tinyhouse/bench"
	"github.com/daystram/tinyhouse/board"
)

func perft(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("perft", flag.ContinueOnError)
	depth := fs.Int("depth", 4, "search depth in plies")
	layout := fs.String("layout", board.DefaultStartingLayout, "root layout")
	parallel := fs.Bool("parallel", true, "split root moves across goroutines")
	divide := fs.Bool("divide", false, "print node counts per root move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	log.Debug().Int("depth", *depth).Str("layout", *layout).Bool("parallel", *parallel).Msg("perft-start")
	cfg := bench.PerftConfig{
		Depth:    *depth,
		Layout:   *layout,
		Parallel: *parallel,
	}
	var done chan struct{}
	if *divide {
		out := make(chan string, 64)
		done = make(chan struct{})
		cfg.Out = out
		go func() {
			defer close(done)
			for s := range out {
				fmt.Println(s)
			}
		}()
	}

	res, err := bench.Perft(ctx, cfg)
	if cfg.Out != nil {
		close(cfg.Out)
		<-done
	}
	if err != nil {
		return err
	}
	log.Info().Msg(res.String())
	return nil
}
