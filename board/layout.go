package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daystram/tinyhouse/position"
)

// UnmarshalLayout loads a layout string into b, replacing its position and history.
//
//	<rank 4>/<rank 3>/<rank 2>/<rank 1> <w|b> <reserves|-> <fullmove>
func UnmarshalLayout(layout string, b *Board) error {
	initZobrist()
	fields := strings.Fields(layout)
	if len(fields) != 4 {
		return fmt.Errorf("%w: want 4 fields, got %d", ErrInvalidLayout, len(fields))
	}

	attacks := b.attacks
	if attacks == nil {
		attacks = DefaultAttackTable()
	}
	*b = Board{
		attacks: attacks,
		history: make([]uint64, 0, 64),
	}

	// board
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != int(Height) {
		return fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidLayout, Height, len(ranks))
	}
	for i, rank := range ranks {
		y := Height - 1 - position.Pos(i)
		x := position.Pos(0)
		for _, r := range rank {
			if x >= Width {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidLayout, y+1)
			}
			if r >= '1' && r <= '0'+rune(Width) {
				x += position.Pos(r - '0')
				continue
			}
			s, p, ok := parsePieceSymbol(r)
			if !ok {
				return fmt.Errorf("%w: unknown piece %q", ErrInvalidLayout, r)
			}
			b.put(s, p, position.NewPos(x, y))
			x++
		}
		if x != Width {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidLayout, y+1, x)
		}
	}

	// turn
	switch fields[1] {
	case "w":
		b.turn = SideWhite
	case "b":
		b.turn = SideBlack
		b.hash ^= zobrist.black
	default:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidLayout, fields[1])
	}

	// reserves
	if fields[2] != "-" {
		for _, r := range fields[2] {
			s, p, ok := parsePieceSymbol(r)
			if !ok || !p.IsReservable() {
				return fmt.Errorf("%w: unknown reserve piece %q", ErrInvalidLayout, r)
			}
			if b.reserve[s][p] >= MaxReserve {
				return fmt.Errorf("%w: reserve overflow", ErrInvalidLayout)
			}
			b.setReserve(s, p, b.reserve[s][p]+1)
		}
	}

	// full move clock
	full, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil || full == 0 || full > MaxFullMove {
		return fmt.Errorf("%w: bad move number %q", ErrInvalidLayout, fields[3])
	}
	b.ply = uint16(full-1) * 2
	if b.turn == SideBlack {
		b.ply++
	}

	if err := b.checkRules(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	b.checkers = b.attackersTo(b.KingPos(b.turn), b.turn.Opposite())
	return nil
}

func MarshalLayout(b *Board) string {
	builder := strings.Builder{}
	for y := position.Pos(Height - 1); y >= 0; y-- {
		empty := 0
		for x := position.Pos(0); x < Width; x++ {
			s, p := b.PieceAt(position.NewPos(x, y))
			if p == PieceUnknown {
				empty++
				continue
			}
			if empty != 0 {
				_, _ = builder.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			_, _ = builder.WriteString(p.Symbol(s))
		}
		if empty != 0 {
			_, _ = builder.WriteString(strconv.Itoa(empty))
		}
		if y != 0 {
			_ = builder.WriteByte('/')
		}
	}

	_ = builder.WriteByte(' ')
	_, _ = builder.WriteString(b.turn.Symbol())
	_ = builder.WriteByte(' ')

	var reserves int
	for _, s := range []Side{SideWhite, SideBlack} {
		for _, p := range ReservePieces {
			for i := uint8(0); i < b.reserve[s][p]; i++ {
				_, _ = builder.WriteString(p.Symbol(s))
				reserves++
			}
		}
	}
	if reserves == 0 {
		_ = builder.WriteByte('-')
	}

	_ = builder.WriteByte(' ')
	_, _ = builder.WriteString(strconv.Itoa(int(b.FullMoveClock())))
	return builder.String()
}

func (b *Board) Layout() string {
	return MarshalLayout(b)
}
