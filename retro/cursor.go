package retro

import (
	"github.com/daystram/tinyhouse/board"
)

// Cursor is a position the solver walks through by pushing and popping moves.
type Cursor interface {
	// Key identifies the current position.
	Key() uint64
	// Moves appends the legal moves of the current position to dst in a stable order.
	Moves(dst []board.Move) []board.Move
	InCheck() bool
	Push(mv board.Move)
	// Pop takes back the last pushed move.
	Pop()
	Validate() error
}

// BoardCursor drives a single live board with an undo stack.
type BoardCursor struct {
	b     *board.Board
	undos []board.Undo
}

func NewBoardCursor(b *board.Board) *BoardCursor {
	return &BoardCursor{
		b:     b,
		undos: make([]board.Undo, 0, 64),
	}
}

func (c *BoardCursor) Key() uint64 {
	return c.b.Hash()
}

func (c *BoardCursor) Moves(dst []board.Move) []board.Move {
	return c.b.AppendMoves(dst)
}

func (c *BoardCursor) InCheck() bool {
	return c.b.InCheck()
}

func (c *BoardCursor) Push(mv board.Move) {
	c.undos = append(c.undos, c.b.Apply(mv))
}

func (c *BoardCursor) Pop() {
	c.b.Undo(c.undos[len(c.undos)-1])
	c.undos = c.undos[:len(c.undos)-1]
}

func (c *BoardCursor) Validate() error {
	return c.b.Validate()
}

// Depth is the number of moves currently pushed.
func (c *BoardCursor) Depth() int {
	return len(c.undos)
}
