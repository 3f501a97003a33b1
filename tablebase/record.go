package tablebase

import (
	"fmt"

	"github.com/daystram/tinyhouse/board"
)

// WDL is the outcome for the side to move.
type WDL uint8

const (
	WDLLoss WDL = iota
	WDLDraw
	WDLWin
)

func (w WDL) String() string {
	switch w {
	case WDLLoss:
		return "Loss"
	case WDLDraw:
		return "Draw"
	case WDLWin:
		return "Win"
	default:
		return fmt.Sprintf("WDL(%d)", uint8(w))
	}
}

// Opposite is the same outcome seen from the other side.
func (w WDL) Opposite() WDL {
	return WDLWin - w
}

// Record is one solved position.
type Record struct {
	Key  uint64
	WDL  WDL
	DTM  uint16
	Best board.Move
}

func (r Record) String() string {
	switch r.WDL {
	case WDLDraw:
		return fmt.Sprintf("%016x draw best %s", r.Key, r.Best)
	default:
		return fmt.Sprintf("%016x %s in %d best %s", r.Key, r.WDL, r.DTM, r.Best)
	}
}
