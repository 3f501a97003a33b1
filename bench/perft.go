package bench

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/tinyhouse/board"
)

type PerftConfig struct {
	Depth    int
	Layout   string
	Parallel bool
	// Out receives one line per root move when set.
	Out chan<- string
}

// PerftResult counts leaf nodes and the kinds of moves leading into them.
type PerftResult struct {
	Depth      int
	Nodes      uint64
	Captures   uint64
	Drops      uint64
	Promotions uint64
	Checks     uint64
	Elapsed    time.Duration
}

func (r PerftResult) String() string {
	return message.NewPrinter(language.English).
		Sprintf("d=%d nodes=%d rate=%dn/s cap=%d drp=%d pro=%d chk=%d (%.3fs elapsed)",
			r.Depth, r.Nodes, int(float64(r.Nodes)/(r.Elapsed.Seconds()+1e-9)), r.Captures, r.Drops, r.Promotions, r.Checks, r.Elapsed.Seconds())
}

type counters struct {
	nodes, cap, drp, pro, chk uint64
}

func (c *counters) merge(o *counters) {
	atomic.AddUint64(&c.nodes, o.nodes)
	atomic.AddUint64(&c.cap, o.cap)
	atomic.AddUint64(&c.drp, o.drp)
	atomic.AddUint64(&c.pro, o.pro)
	atomic.AddUint64(&c.chk, o.chk)
}

func Perft(ctx context.Context, cfg PerftConfig) (PerftResult, error) {
	layout := cfg.Layout
	if layout == "" {
		layout = board.DefaultStartingLayout
	}
	b, err := board.NewBoard(board.WithLayout(layout))
	if err != nil {
		return PerftResult{}, err
	}

	var total counters
	start := time.Now()
	if cfg.Depth <= 0 {
		total.nodes = 1
	} else if cfg.Parallel {
		err = runPerftParallel(ctx, b, cfg.Depth, cfg.Out, &total)
	} else {
		err = runPerftRoot(ctx, b, cfg.Depth, cfg.Out, &total)
	}
	if err != nil {
		return PerftResult{}, err
	}

	return PerftResult{
		Depth:      cfg.Depth,
		Nodes:      total.nodes,
		Captures:   total.cap,
		Drops:      total.drp,
		Promotions: total.pro,
		Checks:     total.chk,
		Elapsed:    time.Since(start),
	}, nil
}

func runPerftRoot(ctx context.Context, b *board.Board, d int, out chan<- string, c *counters) error {
	for _, mv := range b.GenerateMoves() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var child counters
		perftMove(b, mv, d, &child)
		if out != nil {
			out <- fmt.Sprintf("%s: %d", mv, child.nodes)
		}
		c.merge(&child)
	}
	return nil
}

func runPerftParallel(ctx context.Context, b *board.Board, d int, out chan<- string, c *counters) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, mv := range b.GenerateMoves() {
		mv := mv
		bb := b.Clone()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var child counters
			perftMove(bb, mv, d, &child)
			if out != nil {
				out <- fmt.Sprintf("%s: %d", mv, child.nodes)
			}
			c.merge(&child)
			return nil
		})
	}
	return g.Wait()
}

// perftMove plays mv and counts the leaves d-1 plies below it.
func perftMove(b *board.Board, mv board.Move, d int, c *counters) {
	leaf := d == 1
	if leaf {
		c.nodes++
		if b.IsCapture(mv) {
			c.cap++
		}
		if mv.IsDrop() {
			c.drp++
		}
		if mv.Promotion() != board.PieceUnknown {
			c.pro++
		}
	}
	u := b.Apply(mv)
	if leaf {
		if b.InCheck() {
			c.chk++
		}
	} else {
		for _, next := range b.GenerateMoves() {
			perftMove(b, next, d-1, c)
		}
	}
	b.Undo(u)
}
