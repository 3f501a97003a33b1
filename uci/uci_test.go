package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/tablebase"
)

const mateInOneLayout = "k1W1/F3/1K2/4 w - 1"

func newMateInOneTable(t *testing.T) *tablebase.Table {
	t.Helper()
	b, err := board.NewBoard(board.WithLayout(mateInOneLayout))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	mv, err := b.ParseMove("c4b4")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	root := tablebase.Record{Key: b.Hash(), WDL: tablebase.WDLWin, DTM: 1, Best: mv}
	b.Apply(mv)
	mated := tablebase.Record{Key: b.Hash(), WDL: tablebase.WDLLoss, DTM: 0}

	recs := []tablebase.Record{root, mated}
	if recs[0].Key > recs[1].Key {
		recs[0], recs[1] = recs[1], recs[0]
	}
	tb, err := tablebase.NewTable(recs)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	return tb
}

func runScript(t *testing.T, script string) []string {
	t.Helper()
	var out bytes.Buffer
	i := NewInterface(strings.NewReader(script), &out, newMateInOneTable(t))
	if err := i.Run(context.Background()); err != nil {
		t.Fatal("unexpected error:", err)
	}
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestInterface(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		script    string
		wantLines []string
		notLines  []string
	}{
		{
			name:      "handshake",
			script:    "uci\nisready\n",
			wantLines: []string{"id name Tinyhouse", "uciok", "readyok"},
		},
		{
			name:      "moves from start",
			script:    "moves\n",
			wantLines: []string{"moves a1b2 b1b2 c1b3 c1d3 d1c2 a2a3"},
		},
		{
			name:      "move then undo",
			script:    "move a2a3\nundo\nmoves\n",
			wantLines: []string{"moves a1b2 b1b2 c1b3 c1d3 d1c2 a2a3"},
		},
		{
			name:      "illegal move",
			script:    "move a2a4\nmoves\n",
			wantLines: []string{"moves a1b2 b1b2 c1b3 c1d3 d1c2 a2a3"},
		},
		{
			name:      "nothing to undo",
			script:    "undo\n",
			wantLines: []string{"info string nothing to undo"},
		},
		{
			name:      "position with moves",
			script:    "position startpos moves a2a3\nmoves\n",
			notLines:  []string{"moves a1b2 b1b2 c1b3 c1d3 d1c2 a2a3"},
			wantLines: []string{},
		},
		{
			name:   "table move",
			script: "position layout " + mateInOneLayout + "\nprobe\ngo\n",
			wantLines: []string{
				"probe win dtm 1 best c4b4",
				"info score mate 1 wdl win dtm 1 pv c4b4",
				"bestmove c4b4",
			},
		},
		{
			name:      "fallback move",
			script:    "probe\nbestmove\n",
			wantLines: []string{"probe none", "bestmove a1b2"},
		},
		{
			name:      "game over",
			script:    "position layout " + mateInOneLayout + "\nmove c4b4\ngo\n",
			wantLines: []string{"info string game over: StateCheckmate, White wins", "bestmove 0000"},
		},
		{
			name:      "perft",
			script:    "perft 1\n",
			wantLines: []string{"a2a3: 1"},
		},
		{
			name:      "bad layout",
			script:    "position layout k3/4/4/4 w - 1\n",
			wantLines: []string{},
		},
		{
			name:      "unknown command",
			script:    "foo\n",
			wantLines: []string{"info string unknown command: foo"},
		},
		{
			name:      "quit stops reading",
			script:    "quit\nisready\n",
			notLines:  []string{"readyok"},
			wantLines: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lines := runScript(t, tt.script)
			has := make(map[string]bool, len(lines))
			for _, l := range lines {
				has[l] = true
			}
			for _, want := range tt.wantLines {
				if !has[want] {
					t.Errorf("missing line: want=%q got=%q", want, lines)
				}
			}
			for _, not := range tt.notLines {
				if has[not] {
					t.Errorf("unexpected line: %q", not)
				}
			}
		})
	}
}

func TestInterfacePerftSummary(t *testing.T) {
	t.Parallel()
	lines := runScript(t, "setoption name ParallelPerft value false\ngo perft 1\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "d=1 nodes=6 ") {
		t.Errorf("unexpected summary: got=%q", last)
	}
}

func TestInterfaceRepetition(t *testing.T) {
	t.Parallel()
	lines := runScript(t, "position layout 3k/4/4/K3 w - 1\n"+
		"move a1b1\nmove d4c4\nmove b1a1\nmove c4d4\n"+
		"move a1b1\nmove d4c4\nmove b1a1\nmove c4d4\n")
	if got, want := lines[len(lines)-1], "info string game over: draw by repetition"; got != want {
		t.Errorf("unexpected line: got=%q want=%q", got, want)
	}
}

func TestInterfaceMoveByIndex(t *testing.T) {
	t.Parallel()
	lines := runScript(t, "move 5\nmoves\nposition startpos moves a2a3\nmoves\nmove 99\nmove -1\n")

	var moveLists, errs []string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "moves "):
			moveLists = append(moveLists, l)
		case strings.HasPrefix(l, "info string error: "):
			errs = append(errs, l)
		}
	}
	if len(moveLists) != 2 || moveLists[0] != moveLists[1] {
		t.Errorf("unexpected move lists: got=%q want two equal lines", moveLists)
	}
	if len(errs) != 2 {
		t.Errorf("unexpected errors: got=%q want=%d lines", errs, 2)
	}
}

func TestInterfaceAutoReply(t *testing.T) {
	t.Parallel()
	lines := runScript(t, "setoption name AutoReply value true\nmove a2a3\nundo\nundo\nmoves\n")

	var replies []string
	for _, l := range lines {
		if strings.HasPrefix(l, "bestmove ") {
			replies = append(replies, l)
		}
	}
	if len(replies) != 1 || replies[0] == "bestmove 0000" {
		t.Errorf("unexpected replies: got=%q want one playable move", replies)
	}
	if got, want := lines[len(lines)-1], "moves a1b2 b1b2 c1b3 c1d3 d1c2 a2a3"; got != want {
		t.Errorf("unexpected moves after undo: got=%q want=%q", got, want)
	}
}

func TestInterfaceAutoReplyStopsOnGameOver(t *testing.T) {
	t.Parallel()
	lines := runScript(t, "setoption name AutoReply value true\nposition layout "+mateInOneLayout+"\nmove c4b4\n")
	for _, l := range lines {
		if strings.HasPrefix(l, "bestmove ") {
			t.Errorf("unexpected reply after mate: %q", l)
		}
	}
	if got, want := lines[len(lines)-1], "info string game over: StateCheckmate, White wins"; got != want {
		t.Errorf("unexpected line: got=%q want=%q", got, want)
	}
}
