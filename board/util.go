package board

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/daystram/tinyhouse/position"
)

// bitmap is a set of squares, bit i set for position.Pos(i).
type bitmap uint16

func ShiftN(bm bitmap) bitmap {
	return bm << Width
}

func ShiftS(bm bitmap) bitmap {
	return bm >> Width
}

func ShiftE(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileD]) << 1
}

func ShiftW(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileA]) >> 1
}

func ShiftNE(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileD]) << (Width + 1)
}

func ShiftNW(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileA]) << (Width - 1)
}

func ShiftSE(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileD]) >> (Width - 1)
}

func ShiftSW(bm bitmap) bitmap {
	return (bm &^ maskCol[position.FileA]) >> (Width + 1)
}

func Union(bms ...bitmap) bitmap {
	var u bitmap
	for _, bm := range bms {
		u |= bm
	}
	return u
}

func (bm *bitmap) Set(pos position.Pos) {
	*bm |= maskCell[pos]
}

func (bm *bitmap) Unset(pos position.Pos) {
	*bm &^= maskCell[pos]
}

func (bm bitmap) Has(pos position.Pos) bool {
	return bm&maskCell[pos] != 0
}

// LS1B returns the least significant set square, or TotalCells when empty.
func (bm bitmap) LS1B() position.Pos {
	return position.Pos(bits.TrailingZeros16(uint16(bm)))
}

// PopLS1B clears and returns the least significant set square.
func (bm *bitmap) PopLS1B() position.Pos {
	pos := bm.LS1B()
	*bm &= *bm - 1
	return pos
}

func (bm bitmap) BitCount() uint8 {
	return uint8(bits.OnesCount16(uint16(bm)))
}

func (bm bitmap) Dump(sym ...rune) string {
	builder := strings.Builder{}
	for y := position.Pos(Height); y > 0; y-- {
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y))
		for x := position.Pos(0); x < Width; x++ {
			if bm.Has(position.NewPos(x, y-1)) {
				s := "#"
				if len(sym) == 1 {
					s = string(sym[0])
				}
				_, _ = builder.WriteString(fmt.Sprintf(" %s ", s))
			} else {
				_, _ = builder.WriteString(" . ")
			}
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("    ------------\n    ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf(" %s ", x.NotationComponentX()))
	}
	return builder.String()
}
