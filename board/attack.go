package board

import (
	"sync"

	"github.com/daystram/tinyhouse/position"
)

// Horse leg directions.
const (
	dirN = iota
	dirE
	dirS
	dirW
	dirCount
)

// noLeg marks a leg step that falls off the board.
const noLeg position.Pos = -1

// AttackTable holds the precomputed reach of every piece type on an empty board,
// plus the leg squares that gate each horse jump.
type AttackTable struct {
	king  [TotalCells]bitmap
	wazir [TotalCells]bitmap
	ferz  [TotalCells]bitmap
	pawn  [2 + 1][TotalCells]bitmap // captures only

	horseLeg  [dirCount][TotalCells]position.Pos
	horseJump [dirCount][TotalCells]bitmap
}

var (
	defaultAttackTable     *AttackTable
	defaultAttackTableOnce sync.Once
)

// DefaultAttackTable returns the shared table, building it on first use.
func DefaultAttackTable() *AttackTable {
	defaultAttackTableOnce.Do(func() {
		defaultAttackTable = NewAttackTable()
	})
	return defaultAttackTable
}

func NewAttackTable() *AttackTable {
	t := &AttackTable{}
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		cell := maskCell[pos]

		t.wazir[pos] = ShiftN(cell) | ShiftE(cell) | ShiftS(cell) | ShiftW(cell)
		t.ferz[pos] = ShiftNE(cell) | ShiftSE(cell) | ShiftSW(cell) | ShiftNW(cell)
		t.king[pos] = t.wazir[pos] | t.ferz[pos]
		t.pawn[SideWhite][pos] = ShiftNE(cell) | ShiftNW(cell)
		t.pawn[SideBlack][pos] = ShiftSE(cell) | ShiftSW(cell)

		// a jump is one orthogonal leg step then one diagonal step continuing outward
		legs := [dirCount]bitmap{
			dirN: ShiftN(cell),
			dirE: ShiftE(cell),
			dirS: ShiftS(cell),
			dirW: ShiftW(cell),
		}
		jumps := [dirCount]bitmap{
			dirN: ShiftNE(legs[dirN]) | ShiftNW(legs[dirN]),
			dirE: ShiftNE(legs[dirE]) | ShiftSE(legs[dirE]),
			dirS: ShiftSE(legs[dirS]) | ShiftSW(legs[dirS]),
			dirW: ShiftNW(legs[dirW]) | ShiftSW(legs[dirW]),
		}
		for d := 0; d < dirCount; d++ {
			t.horseLeg[d][pos] = noLeg
			if legs[d] != 0 {
				t.horseLeg[d][pos] = legs[d].LS1B()
				t.horseJump[d][pos] = jumps[d]
			}
		}
	}
	return t
}

// Horse returns the squares a horse on pos reaches given the occupancy.
func (t *AttackTable) Horse(pos position.Pos, occupied bitmap) bitmap {
	var bm bitmap
	for d := 0; d < dirCount; d++ {
		leg := t.horseLeg[d][pos]
		if leg != noLeg && !occupied.Has(leg) {
			bm |= t.horseJump[d][pos]
		}
	}
	return bm
}

// Step returns the empty-board reach of a stepping piece, or the capture
// squares of a pawn of side s.
func (t *AttackTable) Step(p Piece, s Side, pos position.Pos) bitmap {
	switch p {
	case PieceKing:
		return t.king[pos]
	case PieceWazir:
		return t.wazir[pos]
	case PieceFerz:
		return t.ferz[pos]
	case PiecePawn:
		return t.pawn[s][pos]
	default:
		return 0
	}
}

// Attacks returns the squares attacked by piece p of side s on pos.
func (t *AttackTable) Attacks(p Piece, s Side, pos position.Pos, occupied bitmap) bitmap {
	if p == PieceHorse {
		return t.Horse(pos, occupied)
	}
	return t.Step(p, s, pos)
}
