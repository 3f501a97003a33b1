package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/daystram/tinyhouse/bench"
	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/engine"
)

var (
	EngineName   = "Tinyhouse"
	EngineAuthor = "Danny August Ramaputra"

	defaultOptions = options{
		debug:         false,
		parallelPerft: true,
		autoReply:     false,
	}
)

const layoutFields = 4

type options struct {
	debug         bool
	parallelPerft bool
	// autoReply makes the engine answer every move played with "move".
	autoReply bool
}

type Interface struct {
	in      io.Reader
	out     io.Writer
	table   engine.Prober
	board   *board.Board
	engine  *engine.Engine
	options options
	undos   []board.Undo
}

// NewInterface reads commands from in and writes replies to out. table may be
// nil, in which case every position goes to the fallback searcher.
func NewInterface(in io.Reader, out io.Writer, table engine.Prober) *Interface {
	return &Interface{
		in:      in,
		out:     out,
		table:   table,
		options: defaultOptions,
	}
}

func (i *Interface) Run(ctx context.Context) error {
	i.reset(ctx)

	scanner := bufio.NewScanner(i.in)
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "uci":
			i.commandUCI(ctx)
		case "ucinewgame", "startpos":
			i.reset(ctx)
		case "isready":
			i.commandReady(ctx)
		case "setoption":
			i.commandSetOption(ctx, args[1:])
		case "position":
			i.commandPosition(ctx, args[1:])
		case "moves":
			i.commandMoves(ctx)
		case "move":
			i.commandMove(ctx, args[1:])
		case "undo":
			i.commandUndo(ctx)
		case "go", "bestmove":
			i.commandGo(ctx, args[1:])
		case "perft":
			i.commandPerft(ctx, args[1:])
		case "probe":
			i.commandProbe(ctx)
		case "d":
			i.commandDraw(ctx)
		case "help":
			i.commandHelp(ctx)
		case "quit":
			return nil
		default:
			i.println(fmt.Sprintf("info string unknown command: %s", args[0]))
		}
	}
	return scanner.Err()
}

func (i *Interface) commandUCI(_ context.Context) {
	i.println(fmt.Sprintf("id name %s", EngineName))
	i.println(fmt.Sprintf("id author %s", EngineAuthor))
	i.println(fmt.Sprintf("option Debug type check default %v", defaultOptions.debug))
	i.println(fmt.Sprintf("option ParallelPerft type check default %v", defaultOptions.parallelPerft))
	i.println(fmt.Sprintf("option AutoReply type check default %v", defaultOptions.autoReply))
	i.println("uciok")
}

func (i *Interface) commandReady(_ context.Context) {
	if i.board != nil && i.engine != nil {
		i.println("readyok")
	}
}

func (i *Interface) commandSetOption(ctx context.Context, args []string) {
	if len(args) < 4 || args[0] != "name" || args[2] != "value" {
		return
	}
	value, err := strconv.ParseBool(args[3])
	if err != nil {
		return
	}
	switch name := strings.ToLower(args[1]); name {
	case "debug":
		i.options.debug = value
		i.engine = i.newEngine()
	case "parallelperft":
		i.options.parallelPerft = value
	case "autoreply":
		i.options.autoReply = value
	}
}

// commandPosition handles "startpos [moves ...]" and "layout <L> [moves ...]".
func (i *Interface) commandPosition(_ context.Context, args []string) {
	if len(args) == 0 {
		return
	}

	var layout string
	switch args[0] {
	case "startpos":
		layout = board.DefaultStartingLayout
		args = args[1:]
	case "layout":
		if len(args) < 1+layoutFields {
			i.println("info string error: incomplete layout")
			return
		}
		layout = strings.Join(args[1:1+layoutFields], " ")
		args = args[1+layoutFields:]
	default:
		return
	}

	b, err := board.NewBoard(board.WithLayout(layout))
	if err != nil {
		i.println(fmt.Sprintf("info string error: %v", err))
		return
	}
	var undos []board.Undo
	if len(args) > 0 && args[0] == "moves" {
		for _, text := range args[1:] {
			mv, err := b.ParseMove(text)
			if err != nil {
				i.println(fmt.Sprintf("info string error: %v", err))
				return
			}
			undos = append(undos, b.Apply(mv))
		}
	}
	i.board = b
	i.undos = undos
}

func (i *Interface) commandMoves(_ context.Context) {
	mvs := lo.Map(i.board.GenerateMoves(), func(mv board.Move, _ int) string {
		return mv.String()
	})
	i.println(fmt.Sprintf("moves %s", strings.Join(mvs, " ")))
}

// commandMove plays a move given as text or as its index in the "moves" list.
func (i *Interface) commandMove(ctx context.Context, args []string) {
	if len(args) != 1 {
		return
	}
	mv, err := i.parseMove(args[0])
	if err != nil {
		i.println(fmt.Sprintf("info string error: %v", err))
		return
	}
	i.undos = append(i.undos, i.board.Apply(mv))
	if !i.reportState() && i.options.autoReply {
		if reply, ok := i.searchBestMove(ctx); ok {
			i.undos = append(i.undos, i.board.Apply(reply))
			i.reportState()
		}
	}
}

func (i *Interface) parseMove(text string) (board.Move, error) {
	idx, err := strconv.Atoi(text)
	if err != nil {
		return i.board.ParseMove(text)
	}
	mvs := i.board.GenerateMoves()
	if idx < 0 || idx >= len(mvs) {
		return board.MoveNull, fmt.Errorf("%w: index %d out of [0, %d)", board.ErrInvalidMove, idx, len(mvs))
	}
	return mvs[idx], nil
}

func (i *Interface) commandUndo(_ context.Context) {
	if len(i.undos) == 0 {
		i.println("info string nothing to undo")
		return
	}
	i.board.Undo(i.undos[len(i.undos)-1])
	i.undos = i.undos[:len(i.undos)-1]
}

func (i *Interface) commandGo(ctx context.Context, args []string) {
	if len(args) > 0 {
		switch mode := args[0]; mode {
		case "perft":
			i.commandPerft(ctx, args[1:])
			return
		default:
			return
		}
	}

	i.searchBestMove(ctx)
}

// searchBestMove prints the engine's move and reports whether it can be played.
func (i *Interface) searchBestMove(ctx context.Context) (board.Move, bool) {
	bestMove, err := i.engine.Search(ctx, i.board)
	if err != nil && !errors.Is(err, engine.ErrNoMove) {
		i.println(fmt.Sprintf("info string error: %v", err))
		return board.MoveNull, false
	}
	i.println(fmt.Sprintf("bestmove %s", bestMove))
	return bestMove, !bestMove.IsNull()
}

func (i *Interface) commandPerft(ctx context.Context, args []string) {
	if len(args) != 1 {
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return
	}

	out := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range out {
			i.println(s)
		}
	}()

	res, err := bench.Perft(ctx, bench.PerftConfig{
		Depth:    depth,
		Layout:   i.board.Layout(),
		Parallel: i.options.parallelPerft,
		Out:      out,
	})
	close(out)
	<-done
	if err != nil {
		i.println(fmt.Sprintf("info string error: %v", err))
		return
	}
	i.println(res.String())
}

func (i *Interface) commandProbe(_ context.Context) {
	rec, ok := i.engine.Probe(i.board)
	if !ok {
		i.println("probe none")
		return
	}
	i.println(fmt.Sprintf("probe %s dtm %d best %s", strings.ToLower(rec.WDL.String()), rec.DTM, rec.Best))
}

func (i *Interface) commandDraw(_ context.Context) {
	if i.options.debug {
		i.println(i.board.Dump())
		i.println(i.board.DebugString())
		return
	}
	i.println(i.board.Draw())
	i.println(fmt.Sprintf("layout %s", i.board.Layout()))
}

func (i *Interface) commandHelp(_ context.Context) {
	i.println(`commands:
  uci | isready | ucinewgame | startpos
  position startpos|layout <L> [moves m1 m2 ...]
  moves                 list legal moves
  move <m>|<n>          play a move (a2a3, c3c4h, P@b2) or the n-th of "moves"
  undo                  take back the last move
  go | bestmove         best move from the table
  go perft <n> | perft <n>
  probe                 table record of the position
  d                     draw the board
  quit`)
}

// reportState announces a finished game and reports whether it is over.
func (i *Interface) reportState() bool {
	state := i.board.State()
	switch {
	case state.IsTerminal():
		i.println(fmt.Sprintf("info string game over: %s, %s wins", state, state.Winner(i.board.Turn())))
	case state == board.StateRepetition:
		i.println("info string game over: draw by repetition")
	default:
		return false
	}
	return true
}

func (i *Interface) newEngine() *engine.Engine {
	return engine.NewEngine(&engine.EngineConfig{
		Table:  i.table,
		Logger: i.println,
		Debug:  i.options.debug,
	})
}

func (i *Interface) reset(ctx context.Context) {
	i.commandPosition(ctx, []string{"startpos"})
	i.engine = i.newEngine()
}

func (i *Interface) println(a ...any) {
	fmt.Fprintln(i.out, a...)
}
