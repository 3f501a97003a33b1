package retro

import (
	"context"
	"sort"
	"testing"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/tablebase"
)

type checkFrame struct {
	undo  board.Undo
	moves []board.Move
	next  int
}

// checkTable replays every position reachable from b and checks each record
// against the records of its children. The walk keeps one frame per ply and
// marks visited records by their index in the table.
func checkTable(t *testing.T, b *board.Board, tb *tablebase.Table) (nodes, edges int) {
	t.Helper()
	recs := tb.Records()
	seen := make([]bool, len(recs))
	index := func(key uint64) int {
		i := sort.Search(len(recs), func(i int) bool { return recs[i].Key >= key })
		if i == len(recs) || recs[i].Key != key {
			t.Fatalf("missing record for %s", b.Layout())
		}
		return i
	}

	// enter checks the current position and returns its moves, or nil when it
	// was already visited.
	enter := func() []board.Move {
		i := index(b.Hash())
		if seen[i] {
			return nil
		}
		seen[i] = true
		nodes++
		checkRecord(t, b, recs[i], func(key uint64) tablebase.Record { return recs[index(key)] })
		moves := b.GenerateMoves()
		edges += len(moves)
		return moves
	}

	stack := []checkFrame{{moves: enter()}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.moves) {
			if len(stack) > 1 {
				b.Undo(top.undo)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		mv := top.moves[top.next]
		top.next++
		u := b.Apply(mv)
		if moves := enter(); moves != nil {
			stack = append(stack, checkFrame{undo: u, moves: moves})
		} else {
			b.Undo(u)
		}
	}
	return nodes, edges
}

// checkRecord checks rec, the record of b, against the records of b's children.
func checkRecord(t *testing.T, b *board.Board, rec tablebase.Record, probe func(uint64) tablebase.Record) {
	t.Helper()
	moves := b.GenerateMoves()
	if len(moves) == 0 {
		want := tablebase.WDLWin
		if b.InCheck() {
			want = tablebase.WDLLoss
		}
		if rec.WDL != want || rec.DTM != 0 || !rec.Best.IsNull() {
			t.Errorf("unexpected terminal record for %s: got=%v want=%s in 0", b.Layout(), rec, want)
		}
		return
	}

	var (
		anyLoss, allWin = false, true
		minLoss, maxWin = uint16(0xFFFF), uint16(0)
		bestChild       tablebase.Record
		bestFound       bool
	)
	for _, mv := range moves {
		u := b.Apply(mv)
		child := probe(b.Hash())
		b.Undo(u)

		if child.WDL == tablebase.WDLLoss {
			anyLoss = true
			if child.DTM < minLoss {
				minLoss = child.DTM
			}
		}
		if child.WDL != tablebase.WDLWin {
			allWin = false
		} else if child.DTM > maxWin {
			maxWin = child.DTM
		}
		if mv == rec.Best {
			bestChild, bestFound = child, true
		}
	}
	if !bestFound {
		t.Fatalf("best move %s of %s is not legal", rec.Best, b.Layout())
	}

	switch rec.WDL {
	case tablebase.WDLWin:
		if !anyLoss || rec.DTM != minLoss+1 {
			t.Errorf("win at %s: dtm=%d anyLoss=%v minLoss=%d", b.Layout(), rec.DTM, anyLoss, minLoss)
		}
		if bestChild.WDL != tablebase.WDLLoss || bestChild.DTM+1 != rec.DTM {
			t.Errorf("win at %s: best leads to %v", b.Layout(), bestChild)
		}
	case tablebase.WDLLoss:
		if !allWin || rec.DTM != maxWin+1 {
			t.Errorf("loss at %s: dtm=%d allWin=%v maxWin=%d", b.Layout(), rec.DTM, allWin, maxWin)
		}
		if bestChild.DTM+1 != rec.DTM {
			t.Errorf("loss at %s: best leads to %v", b.Layout(), bestChild)
		}
	case tablebase.WDLDraw:
		if anyLoss || allWin || rec.DTM != 0 || bestChild.WDL != tablebase.WDLDraw {
			t.Errorf("draw at %s: anyLoss=%v allWin=%v rec=%v best=%v", b.Layout(), anyLoss, allWin, rec, bestChild)
		}
	}
}

func TestSolveKingPawn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		layout string
		// wantRoot pins the root record when set.
		wantRoot *tablebase.Record
	}{
		{layout: "3k/4/P3/K3 w - 1"},
		{layout: "k3/4/1P2/2K1 w - 1"},
		// White's King is boxed in by its own pawn and the Black King: stalemate, which White wins.
		{layout: "K3/P1k1/4/4 w - 1", wantRoot: &tablebase.Record{WDL: tablebase.WDLWin, DTM: 0}},
		{layout: "K1k1/P3/4/4 w - 1", wantRoot: &tablebase.Record{WDL: tablebase.WDLWin, DTM: 0}},
	}

	for _, tt := range tests {
		tt := tt
		layout := tt.layout
		t.Run(layout, func(t *testing.T) {
			t.Parallel()
			b, err := board.NewBoard(board.WithLayout(layout))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			res, err := Solve(context.Background(), NewBoardCursor(b))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if got := b.Layout(); got != layout {
				t.Fatalf("board not restored: got=%s want=%s", got, layout)
			}

			tb, err := tablebase.NewTable(res.Records())
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			nodes, edges := checkTable(t, b, tb)
			stats := res.Stats()
			if stats.Nodes != nodes || stats.Edges != edges || tb.Len() != nodes {
				t.Errorf("unexpected graph size: got=%d/%d want=%d/%d", stats.Nodes, stats.Edges, nodes, edges)
			}
			if stats.Win+stats.Draw+stats.Loss != stats.Nodes {
				t.Errorf("unclassified nodes: %+v", stats)
			}

			root, ok := tb.Probe(b.Hash())
			if !ok {
				t.Fatal("root missing from table")
			}
			if want := tt.wantRoot; want != nil {
				if root.WDL != want.WDL || root.DTM != want.DTM || root.Best != want.Best {
					t.Errorf("unexpected root: got=%v want=%s in %d best %s", root, want.WDL, want.DTM, want.Best)
				}
			}

			// the best-move line of a decided root ends on a terminal after exactly DTM plies
			if root.WDL == tablebase.WDLDraw {
				return
			}
			for ply := root.DTM; ply > 0; ply-- {
				rec, _ := tb.Probe(b.Hash())
				if rec.DTM != ply {
					t.Fatalf("unexpected distance on the line: got=%d want=%d", rec.DTM, ply)
				}
				b.Apply(rec.Best)
			}
			if got := b.State(); !got.IsTerminal() {
				t.Errorf("line ended on a non-terminal state: %s at %s", got, b.Layout())
			}
		})
	}
}

func TestSolveMateInOne(t *testing.T) {
	t.Parallel()
	b, err := board.NewBoard(board.WithLayout("k1W1/F3/1K2/4 w - 1"))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	res, err := Solve(context.Background(), NewBoardCursor(b), WithValidation(false))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	tb, err := tablebase.NewTable(res.Records())
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	root, ok := tb.Probe(b.Hash())
	if !ok {
		t.Fatal("root missing from table")
	}
	if root.WDL != tablebase.WDLWin || root.DTM != 1 || root.Best.String() != "c4b4" {
		t.Errorf("unexpected root: got=%v want=win in 1 by c4b4", root)
	}
}
