package bench

import (
	"context"
	"fmt"
	"testing"

	"github.com/daystram/tinyhouse/board"
)

func TestPerft(t *testing.T) {
	t.Parallel()

	// counted by hand from the listed positions
	tests := map[string][]struct {
		depth     int
		wantNodes uint64
		wantCap   uint64
		wantDrp   uint64
		wantPro   uint64
		wantChk   uint64
	}{
		board.DefaultStartingLayout: {
			{depth: 0, wantNodes: 1},
			{depth: 1, wantNodes: 6, wantCap: 1, wantChk: 1},
		},
		"3k/P3/4/K3 w - 1": {
			{depth: 1, wantNodes: 6, wantPro: 3},
		},
		"3k/4/4/K3 w F 1": {
			{depth: 1, wantNodes: 17, wantDrp: 14, wantChk: 1},
		},
	}

	for layout, tts := range tests {
		for _, tt := range tts {
			layout, tt := layout, tt
			t.Run(fmt.Sprintf("%s:%d", layout, tt.depth), func(t *testing.T) {
				t.Parallel()
				for _, parallel := range []bool{false, true} {
					got, err := Perft(context.Background(), PerftConfig{Depth: tt.depth, Layout: layout, Parallel: parallel})
					if err != nil {
						t.Fatal("unexpected error:", err)
					}
					if got.Nodes != tt.wantNodes {
						t.Errorf("unexpected nodes: got=%d want=%d", got.Nodes, tt.wantNodes)
					}
					if got.Captures != tt.wantCap {
						t.Errorf("unexpected captures: got=%d want=%d", got.Captures, tt.wantCap)
					}
					if got.Drops != tt.wantDrp {
						t.Errorf("unexpected drops: got=%d want=%d", got.Drops, tt.wantDrp)
					}
					if got.Promotions != tt.wantPro {
						t.Errorf("unexpected promotions: got=%d want=%d", got.Promotions, tt.wantPro)
					}
					if got.Checks != tt.wantChk {
						t.Errorf("unexpected checks: got=%d want=%d", got.Checks, tt.wantChk)
					}
				}
			})
		}
	}
}

func TestPerftParallelAgrees(t *testing.T) {
	t.Parallel()
	for _, layout := range []string{board.DefaultStartingLayout, "1h1k/P3/1p2/K2W w Hf 7"} {
		serial, err := Perft(context.Background(), PerftConfig{Depth: 3, Layout: layout})
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		out := make(chan string, 256)
		parallel, err := Perft(context.Background(), PerftConfig{Depth: 3, Layout: layout, Parallel: true, Out: out})
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		serial.Elapsed, parallel.Elapsed = 0, 0
		if serial != parallel {
			t.Errorf("serial and parallel disagree on %s: %+v vs %+v", layout, serial, parallel)
		}
		close(out)
		var lines int
		for range out {
			lines++
		}
		if lines == 0 {
			t.Errorf("no root move lines for %s", layout)
		}
	}
}

func TestPerftInvalidLayout(t *testing.T) {
	t.Parallel()
	if _, err := Perft(context.Background(), PerftConfig{Depth: 1, Layout: "bad"}); err == nil {
		t.Error("error expected: got=nil")
	}
}
