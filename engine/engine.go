package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/tablebase"
)

const (
	ScoreInfinite int16 = math.MaxInt16

	// MaxPVLength bounds the principal variation walked out of the table.
	MaxPVLength = 32

	scoreCheckmate = ScoreInfinite - 1
)

var ErrNoMove = errors.New("cannot resolve best move")

func DefaultLogger(a ...any) {
	fmt.Println(a...)
}

// Prober looks up solved positions by state key.
type Prober interface {
	Probe(key uint64) (tablebase.Record, bool)
}

// Searcher picks a move for positions the table does not cover.
type Searcher interface {
	Search(ctx context.Context, b *board.Board) (board.Move, error)
}

// FirstMove plays the first legal move in generation order.
type FirstMove struct{}

func (FirstMove) Search(ctx context.Context, b *board.Board) (board.Move, error) {
	if err := ctx.Err(); err != nil {
		return board.MoveNull, err
	}
	mvs := b.GenerateMoves()
	if len(mvs) == 0 {
		return board.MoveNull, ErrNoMove
	}
	return mvs[0], nil
}

type PVLine struct {
	mvs []board.Move
}

func (pvl *PVLine) GetPV() board.Move {
	if len(pvl.mvs) == 0 {
		return board.MoveNull
	}
	return pvl.mvs[0]
}

func (pvl *PVLine) Len() int {
	return len(pvl.mvs)
}

func (pvl *PVLine) StringUCI() string {
	if pvl == nil {
		return ""
	}
	return strings.Join(lo.Map(pvl.mvs, func(mv board.Move, _ int) string {
		return mv.String()
	}), " ")
}

func (pvl *PVLine) String(b *board.Board) string {
	return DumpHistory(b, pvl.mvs)
}

// DumpHistory writes mvs as numbered moves played from b, marking checks,
// checkmates and stalemates.
func DumpHistory(b *board.Board, mvs []board.Move) string {
	if b == nil || len(mvs) < 1 {
		return ""
	}
	builder := strings.Builder{}
	bb := b.Clone()
	fullMoveClock := bb.FullMoveClock()
	if bb.Turn() == board.SideBlack {
		_, _ = builder.WriteString(fmt.Sprintf("%d... ", fullMoveClock))
	}
	for i, mv := range mvs {
		turn := bb.Turn()
		bb.Apply(mv)
		if turn == board.SideWhite {
			_, _ = builder.WriteString(fmt.Sprintf("%d. %s", fullMoveClock, mv))
		} else {
			_, _ = builder.WriteString(mv.String())
			fullMoveClock++
		}
		switch bb.State() {
		case board.StateCheck:
			_, _ = builder.WriteRune('+')
		case board.StateCheckmate:
			_, _ = builder.WriteRune('#')
		case board.StateStalemate:
			_, _ = builder.WriteRune('$')
		}
		if i < len(mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

type EngineConfig struct {
	Table    Prober
	Fallback Searcher
	Logger   func(...any)
	Debug    bool
}

type Engine struct {
	table    Prober
	fallback Searcher
	logger   func(...any)
	debug    bool
}

func NewEngine(cfg *EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = DefaultLogger
	}
	if cfg.Fallback == nil {
		cfg.Fallback = FirstMove{}
	}

	return &Engine{
		table:    cfg.Table,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
		debug:    cfg.Debug,
	}
}

// Probe returns the table record of the current position.
func (e *Engine) Probe(b *board.Board) (tablebase.Record, bool) {
	if e.table == nil {
		return tablebase.Record{}, false
	}
	return e.table.Probe(b.Hash())
}

// Search answers from the table when the position is solved and defers to
// the fallback searcher otherwise.
func (e *Engine) Search(ctx context.Context, b *board.Board) (board.Move, error) {
	mvs := b.GenerateMoves()
	if len(mvs) == 0 {
		return board.MoveNull, ErrNoMove
	}

	if rec, ok := e.Probe(b); ok && lo.Contains(mvs, rec.Best) {
		pvl := e.principalVariation(b, rec)
		score := Score(rec)
		if e.debug {
			e.logger(message.NewPrinter(language.English).
				Sprintf("[%s] %s dtm:%d\n    %s", formatScoreDebug(score), rec.WDL, rec.DTM, pvl.String(b)))
		} else {
			e.logger(fmt.Sprintf("info score %s wdl %s dtm %d pv %s",
				formatScoreUCI(score), strings.ToLower(rec.WDL.String()), rec.DTM, pvl.StringUCI()))
		}
		return rec.Best, nil
	}

	mv, err := e.fallback.Search(ctx, b)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return board.MoveNull, err
	}
	if mv.IsNull() || !lo.Contains(mvs, mv) {
		return board.MoveNull, ErrNoMove
	}
	e.logger(fmt.Sprintf("info string position not in table, fallback %s", mv))
	return mv, nil
}

// principalVariation follows best moves through the table, stopping at a
// terminal, an unknown position or MaxPVLength plies.
func (e *Engine) principalVariation(b *board.Board, rec tablebase.Record) PVLine {
	var pvl PVLine
	bb := b.Clone()
	limit := MaxPVLength
	if rec.WDL != tablebase.WDLDraw {
		limit = min(limit, int(rec.DTM))
	}
	for len(pvl.mvs) < limit && !rec.Best.IsNull() {
		pvl.mvs = append(pvl.mvs, rec.Best)
		bb.Apply(rec.Best)
		var ok bool
		if rec, ok = e.table.Probe(bb.Hash()); !ok {
			break
		}
	}
	return pvl
}

// Score maps a record to a mate score from the side to move's view. Draws
// score zero.
func Score(rec tablebase.Record) int16 {
	switch rec.WDL {
	case tablebase.WDLWin:
		return scoreCheckmate - int16(min(rec.DTM, uint16(scoreCheckmate)))
	case tablebase.WDLLoss:
		return -scoreCheckmate + int16(min(rec.DTM, uint16(scoreCheckmate)))
	default:
		return 0
	}
}

func min[T constraints.Ordered](x1, x2 T) T {
	if x1 < x2 {
		return x1
	}
	return x2
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return x * -1
	}
	return x
}

// mateMoves converts a mate score to full moves until mate.
func mateMoves(s int16) int16 {
	plies := scoreCheckmate - abs(s)
	return (plies + 1) / 2
}

func formatScoreDebug(s int16) string {
	switch {
	case s > 0:
		return fmt.Sprintf("#+%d", mateMoves(s))
	case s < 0:
		return fmt.Sprintf("#-%d", mateMoves(s))
	default:
		return "="
	}
}

func formatScoreUCI(s int16) string {
	switch {
	case s > 0:
		return fmt.Sprintf("mate %d", mateMoves(s))
	case s < 0:
		return fmt.Sprintf("mate -%d", mateMoves(s))
	default:
		return "cp 0"
	}
}
