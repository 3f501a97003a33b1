package board

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/daystram/tinyhouse/position"
)

var (
	colorLabel     = color.New(color.Bold)
	colorCellLight = color.New(color.FgBlack, color.BgHiGreen)
	colorCellDark  = color.New(color.FgBlack, color.BgGreen)
	colorReserve   = color.New(color.Faint)
)

func (b *Board) Dump() string {
	builder := strings.Builder{}
	for y := position.Pos(Height) - 1; y >= 0; y-- {
		_, _ = builder.WriteString("   +---+---+---+---+\n")
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y+1))
		for x := position.Pos(0); x < Width; x++ {
			s, p := b.PieceAt(position.NewPos(x, y))
			sym := p.Symbol(s)
			if p == PieceUnknown {
				sym = " "
			}
			_, _ = builder.WriteString(fmt.Sprintf(" %s |", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   +---+---+---+---+\n   ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf("  %s ", x.NotationComponentX()))
	}
	_, _ = builder.WriteString("\n")
	_, _ = builder.WriteString(b.dumpReserves())
	return builder.String()
}

// Draw renders the board with terminal colours. Colours are dropped when the
// output is not a terminal.
func (b *Board) Draw() string {
	builder := strings.Builder{}
	for y := position.Pos(Height) - 1; y >= 0; y-- {
		_, _ = builder.WriteString(colorLabel.Sprintf(" %d ", y+1))
		for x := position.Pos(0); x < Width; x++ {
			s, p := b.PieceAt(position.NewPos(x, y))
			sym := p.Symbol(s)
			if p == PieceUnknown {
				sym = " "
			}
			cell := colorCellDark
			if x%2^y%2 != 0 {
				cell = colorCellLight
			}
			_, _ = builder.WriteString(cell.Sprintf(" %s ", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   ")
	for x := position.Pos(0); x < Width; x++ {
		_, _ = builder.WriteString(colorLabel.Sprintf(" %s ", x.NotationComponentX()))
	}
	_, _ = builder.WriteString("\n")
	_, _ = builder.WriteString(colorReserve.Sprint(b.dumpReserves()))
	return builder.String()
}

func (b *Board) dumpReserves() string {
	var parts []string
	for _, s := range []Side{SideWhite, SideBlack} {
		var held string
		for _, p := range ReservePieces {
			held += strings.Repeat(p.Symbol(s), int(b.reserve[s][p]))
		}
		if held == "" {
			held = "-"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", s, held))
	}
	return fmt.Sprintf("to move: %s  %s", b.turn, strings.Join(parts, "  "))
}

func (b *Board) DebugString() string {
	return fmt.Sprintf("hash: %016x\nply:  %4d\nfull: %4d\nstat: %s", b.hash, b.ply, b.FullMoveClock(), b.State())
}
