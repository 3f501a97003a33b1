package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	exitOK = iota
	exitErr
	exitUsage
)

var (
	profile = flag.Bool("profile", false, "serve pprof endpoint")
	verbose = flag.Bool("v", false, "debug logging")

	errUsage = errors.New("usage")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	setupLogger(*verbose)

	if *profile {
		runProfiler()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := realMain(ctx, flag.Args())
	stop()
	switch {
	case errors.Is(err, errUsage):
		os.Exit(exitUsage)
	case err != nil:
		log.Error().Err(err).Msg("exit")
		os.Exit(exitErr)
	}
	os.Exit(exitOK)
}

func setupLogger(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

func runProfiler() {
	go func() {
		addr := "localhost:6060"
		log.Info().Str("addr", fmt.Sprintf("http://%s/debug/pprof", addr)).Msg("pprof-serving")
		_ = http.ListenAndServe(addr, nil)
	}()
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: tinyhouse [-v] [-profile] <command> [flags]

commands:
  play      interactive session, optionally backed by a table (default)
  solve     solve every position reachable from a layout and write the table
  perft     count leaf nodes to a depth
  movegen   list the legal moves of a layout
  step      play random moves from a layout

`)
	flag.PrintDefaults()
}

func realMain(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return play(ctx, nil)
	}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "play":
		return play(ctx, rest)
	case "solve":
		return solve(ctx, rest)
	case "perft":
		return perft(ctx, rest)
	case "movegen":
		return movegen(rest)
	case "step":
		return step(rest)
	case "help":
		usage()
		return nil
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", cmd)
		usage()
		return errUsage
	}
}

// parseFlags maps flag parsing failures, including -h, to errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}
