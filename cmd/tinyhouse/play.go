package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/daystram/tinyhouse/engine"
	"github.com/daystram/tinyhouse/tablebase"
	"github.com/daystram/tinyhouse/uci"
)

func play(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	path := fs.String("tb", "", "table to answer from")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var table engine.Prober
	if *path != "" {
		tb, err := tablebase.Load(*path)
		if err != nil {
			return err
		}
		log.Info().Str("path", *path).Int("records", tb.Len()).Msg("table-loaded")
		table = tb
	}
	return uci.NewInterface(os.Stdin, os.Stdout, table).Run(ctx)
}
