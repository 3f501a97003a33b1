package board

import (
	"errors"
	"reflect"
	"testing"
)

var testLayouts = []string{
	DefaultStartingLayout,
	"3k/4/4/K3 w Pph 12",
	"2k1/1h2/4/1K1W b Ff 3",
	"k3/W3/4/3K b - 1",
	"1h1k/P3/1p2/K2W w Hf 7",
}

func TestApplyUndo(t *testing.T) {
	t.Parallel()
	for _, layout := range testLayouts {
		layout := layout
		t.Run(layout, func(t *testing.T) {
			t.Parallel()

			b, err := NewBoard(WithLayout(layout))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			for _, mv := range b.GeneratePseudoLegalMoves() {
				before := b.Clone()
				legal := b.IsLegal(mv)
				u := b.Apply(mv)
				if err := b.Validate(); legal && err != nil {
					t.Errorf("invalid after %s: %v", mv, err)
				}
				b.Undo(u)
				if !reflect.DeepEqual(before, b) {
					t.Errorf("board not restored after %s:\n%s\nwant:\n%s", mv, b.Dump(), before.Dump())
				}
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	t.Parallel()
	for _, layout := range testLayouts {
		layout := layout
		t.Run(layout, func(t *testing.T) {
			t.Parallel()

			b, err := NewBoard(WithLayout(layout))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			for i := 0; i < 40; i++ {
				moves := b.GenerateMoves()
				if len(moves) == 0 {
					break
				}
				b.Apply(moves[(i*7)%len(moves)])

				fresh, err := NewBoard(WithLayout(b.Layout()))
				if err != nil {
					t.Fatalf("layout %q of a reached position rejected: %v", b.Layout(), err)
				}
				if got, want := b.Hash(), fresh.Hash(); got != want {
					t.Fatalf("unexpected hash at %q: got=%016x want=%016x", b.Layout(), got, want)
				}
			}
		})
	}
}

func TestHashDistinguishes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
	}{
		{a: "3k/4/4/K3 w - 1", b: "3k/4/4/K3 b - 1"},
		{a: "3k/4/4/K3 w - 1", b: "3k/4/4/K3 w P 1"},
		{a: "3k/4/4/K3 w P 1", b: "3k/4/4/K3 w p 1"},
		{a: "3k/4/4/K3 w P 1", b: "3k/4/4/K3 w PP 1"},
		{a: "3k/4/4/K3 w H 1", b: "3k/4/4/K3 w F 1"},
		{a: "3k/4/P3/K3 w - 1", b: "3k/4/1P2/K3 w - 1"},
	}
	for _, tt := range tests {
		a, err := NewBoard(WithLayout(tt.a))
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		b, err := NewBoard(WithLayout(tt.b))
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		if a.Hash() == b.Hash() {
			t.Errorf("hash collision: %q and %q", tt.a, tt.b)
		}
	}

	// the move number is not part of the key
	a, _ := NewBoard(WithLayout("3k/4/4/K3 w - 1"))
	b, _ := NewBoard(WithLayout("3k/4/4/K3 w - 30"))
	if a.Hash() != b.Hash() {
		t.Error("move number changed the hash")
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	t.Parallel()
	b, err := NewBoard()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	b.hash ^= 1
	if err := b.Validate(); !errors.Is(err, ErrInconsistentBoard) {
		t.Errorf("unexpected error: got=%v want=%v", err, ErrInconsistentBoard)
	}

	b, _ = NewBoard()
	b.pieces[PieceWazir] = 0
	if err := b.Validate(); !errors.Is(err, ErrInconsistentBoard) {
		t.Errorf("unexpected error: got=%v want=%v", err, ErrInconsistentBoard)
	}
}

func TestState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		layout     string
		want       State
		wantWinner Side
	}{
		{layout: DefaultStartingLayout, want: StateRunning, wantWinner: SideUnknown},
		{layout: "k3/W3/4/3K b - 1", want: StateCheck, wantWinner: SideUnknown},
		{layout: "kW2/F3/1K2/4 b - 1", want: StateCheckmate, wantWinner: SideWhite},
		{layout: "k3/P3/1K2/4 b - 1", want: StateStalemate, wantWinner: SideBlack},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.layout, func(t *testing.T) {
			t.Parallel()

			b, err := NewBoard(WithLayout(tt.layout))
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			got := b.State()
			if got != tt.want {
				t.Errorf("unexpected state: got=%s want=%s", got, tt.want)
			}
			if winner := got.Winner(b.Turn()); winner != tt.wantWinner {
				t.Errorf("unexpected winner: got=%s want=%s", winner, tt.wantWinner)
			}
		})
	}
}

func TestRepetition(t *testing.T) {
	t.Parallel()
	b, err := NewBoard(WithLayout("3k/4/4/K3 w - 1"))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	cycle := []string{"a1b1", "d4c4", "b1a1", "c4d4"}
	play := func() {
		for _, text := range cycle {
			mv, err := b.ParseMove(text)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			b.Apply(mv)
		}
	}

	play()
	if !b.IsRepetition(2) || b.IsRepetition(3) {
		t.Errorf("unexpected repetition after one cycle: twice=%v thrice=%v", b.IsRepetition(2), b.IsRepetition(3))
	}
	play()
	if got := b.State(); got != StateRepetition {
		t.Errorf("unexpected state: got=%s want=%s", got, StateRepetition)
	}
}
