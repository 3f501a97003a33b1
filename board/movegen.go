package board

import (
	"fmt"
	"strings"

	"github.com/daystram/tinyhouse/position"
)

// GeneratePseudoLegalMoves lists moves for the side to move without checking
// whether they leave its own King attacked. Board moves come first, by
// ascending origin then target square, followed by drops in reserve order.
func (b *Board) GeneratePseudoLegalMoves() []Move {
	return b.appendPseudoLegalMoves(make([]Move, 0, 32))
}

func (b *Board) appendPseudoLegalMoves(dst []Move) []Move {
	s := b.turn
	own := b.sides[s]

	for bm := own; bm != 0; {
		from := bm.PopLS1B()
		_, p := b.PieceAt(from)

		var targets bitmap
		if p == PiecePawn {
			targets = b.pawnPush(s, from)&^b.occupied | b.attacks.pawn[s][from]&b.sides[s.Opposite()]
		} else {
			targets = b.attacks.Attacks(p, s, from, b.occupied) &^ own
		}

		for targets != 0 {
			to := targets.PopLS1B()
			if p == PiecePawn && maskLastRank[s].Has(to) {
				for _, prom := range PawnPromoteCandidates {
					dst = append(dst, NewPromotion(from, to, prom))
				}
				continue
			}
			dst = append(dst, NewMove(from, to))
		}
	}

	empty := ^b.occupied
	for _, p := range ReservePieces {
		if b.reserve[s][p] == 0 {
			continue
		}
		targets := empty
		if p == PiecePawn {
			targets &^= maskLastRank[s]
		}
		for targets != 0 {
			dst = append(dst, NewDrop(p, targets.PopLS1B()))
		}
	}
	return dst
}

func (b *Board) pawnPush(s Side, from position.Pos) bitmap {
	if s == SideWhite {
		return ShiftN(maskCell[from])
	}
	return ShiftS(maskCell[from])
}

// GenerateMoves lists the legal moves for the side to move.
func (b *Board) GenerateMoves() []Move {
	return b.AppendMoves(make([]Move, 0, 32))
}

// AppendMoves appends the legal moves to dst, reusing its capacity.
func (b *Board) AppendMoves(dst []Move) []Move {
	start := len(dst)
	dst = b.appendPseudoLegalMoves(dst)
	n := start
	for i := start; i < len(dst); i++ {
		if b.IsLegal(dst[i]) {
			dst[n] = dst[i]
			n++
		}
	}
	return dst[:n]
}

// IsLegal reports whether a pseudo-legal move keeps the mover's King safe.
func (b *Board) IsLegal(mv Move) bool {
	s := b.turn
	u := b.Apply(mv)
	ok := !b.isKingChecked(s)
	b.Undo(u)
	return ok
}

// IsCapture reports whether mv takes a piece in the current position.
func (b *Board) IsCapture(mv Move) bool {
	if mv.IsDrop() {
		return false
	}
	return b.occupied.Has(mv.To())
}

// ParseMove reads a move in text form and matches it against the legal moves.
func (b *Board) ParseMove(text string) (Move, error) {
	mv, err := parseMoveText(text)
	if err != nil {
		return MoveNull, err
	}
	for _, legal := range b.GenerateMoves() {
		if legal == mv {
			return mv, nil
		}
	}
	return MoveNull, fmt.Errorf("%w: %s is not legal", ErrInvalidMove, text)
}

func parseMoveText(text string) (Move, error) {
	if i := strings.IndexByte(text, '@'); i >= 0 {
		if i != 1 {
			return MoveNull, fmt.Errorf("%w: %q", ErrInvalidMove, text)
		}
		_, p, ok := parsePieceSymbol(rune(text[0]))
		if !ok || !p.IsReservable() {
			return MoveNull, fmt.Errorf("%w: bad drop piece in %q", ErrInvalidMove, text)
		}
		to, err := position.NewPosFromNotation(text[2:])
		if err != nil {
			return MoveNull, fmt.Errorf("%w: %v", ErrInvalidMove, err)
		}
		return NewDrop(p, to), nil
	}

	if len(text) != 4 && len(text) != 5 {
		return MoveNull, fmt.Errorf("%w: %q", ErrInvalidMove, text)
	}
	from, err := position.NewPosFromNotation(text[0:2])
	if err != nil {
		return MoveNull, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	to, err := position.NewPosFromNotation(text[2:4])
	if err != nil {
		return MoveNull, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if len(text) == 4 {
		return NewMove(from, to), nil
	}
	_, p, ok := parsePieceSymbol(rune(text[4]))
	if !ok || p == PiecePawn || p == PieceKing {
		return MoveNull, fmt.Errorf("%w: bad promotion in %q", ErrInvalidMove, text)
	}
	return NewPromotion(from, to, p), nil
}
