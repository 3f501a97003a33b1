package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/retro"
	"github.com/daystram/tinyhouse/tablebase"
)

func solve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	out := fs.String("out", "tinyhouse.tb", "table output path, zstd compressed when ending in "+tablebase.CompressedExt)
	layout := fs.String("layout", board.DefaultStartingLayout, "root layout")
	validate := fs.Bool("validate", true, "check board consistency at every discovered node")
	progress := fs.Int("progress", retro.DefaultProgressInterval, "nodes between progress logs")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	b, err := board.NewBoard(board.WithLayout(*layout))
	if err != nil {
		return err
	}
	logger := log.With().Str("run", uuid.NewString()).Logger()
	logger.Info().Str("layout", b.Layout()).Str("out", *out).Msg("solve-start")

	res, err := retro.Solve(ctx, retro.NewBoardCursor(b),
		retro.WithLogger(logger),
		retro.WithValidation(*validate),
		retro.WithProgressInterval(*progress),
	)
	if err != nil {
		return err
	}

	recs := res.Records()
	if err := tablebase.WriteFile(*out, recs); err != nil {
		return err
	}
	logger.Info().Str("path", *out).Int("records", len(recs)).Msg("table-written")

	tb, err := tablebase.NewTable(recs)
	if err != nil {
		return err
	}
	fmt.Println(res.Stats())
	fmt.Println(tb.Summary())
	if rec, ok := tb.Probe(b.Hash()); ok {
		fmt.Println("root:", rec)
	}
	return nil
}
