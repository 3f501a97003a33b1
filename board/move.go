package board

import (
	"fmt"

	"github.com/daystram/tinyhouse/position"
)

// Move packs a move into 16 bits:
//
//	bits 0-3   to
//	bits 4-7   from (equal to "to" for drops)
//	bits 8-9   promotion piece (0=Wazir 1=Ferz 2=Horse) or dropped piece (0=Pawn 1=Horse 2=Ferz 3=Wazir)
//	bits 14-15 type
//
// The zero value is the null move.
type Move uint16

type MoveType uint8

const (
	MoveTypeNormal MoveType = iota
	MoveTypePromotion
	MoveTypeDrop
)

const (
	MoveNull Move = 0

	moveShiftFrom = 4
	moveShiftAux  = 8
	moveShiftType = 14
	moveMaskPos   = 0xF
	moveMaskAux   = 0x3
)

var (
	promotionAux = [PieceKing + 1]Move{PieceWazir: 0, PieceFerz: 1, PieceHorse: 2}
	auxPromotion = [4]Piece{PieceWazir, PieceFerz, PieceHorse, PieceUnknown}
	dropAux      = [PieceKing + 1]Move{PiecePawn: 0, PieceHorse: 1, PieceFerz: 2, PieceWazir: 3}
	auxDrop      = [4]Piece{PiecePawn, PieceHorse, PieceFerz, PieceWazir}
)

func NewMove(from, to position.Pos) Move {
	return Move(from)<<moveShiftFrom | Move(to)
}

func NewPromotion(from, to position.Pos, p Piece) Move {
	return Move(MoveTypePromotion)<<moveShiftType | promotionAux[p]<<moveShiftAux | NewMove(from, to)
}

func NewDrop(p Piece, to position.Pos) Move {
	return Move(MoveTypeDrop)<<moveShiftType | dropAux[p]<<moveShiftAux | NewMove(to, to)
}

func (m Move) From() position.Pos {
	return position.Pos(m >> moveShiftFrom & moveMaskPos)
}

func (m Move) To() position.Pos {
	return position.Pos(m & moveMaskPos)
}

func (m Move) Type() MoveType {
	return MoveType(m >> moveShiftType)
}

func (m Move) IsNull() bool {
	return m == MoveNull
}

func (m Move) IsDrop() bool {
	return m.Type() == MoveTypeDrop
}

// Promotion returns the promoted piece, or PieceUnknown for non-promotions.
func (m Move) Promotion() Piece {
	if m.Type() != MoveTypePromotion {
		return PieceUnknown
	}
	return auxPromotion[m>>moveShiftAux&moveMaskAux]
}

// DropPiece returns the dropped piece, or PieceUnknown for board moves.
func (m Move) DropPiece() Piece {
	if m.Type() != MoveTypeDrop {
		return PieceUnknown
	}
	return auxDrop[m>>moveShiftAux&moveMaskAux]
}

func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	switch m.Type() {
	case MoveTypeDrop:
		return fmt.Sprintf("%s@%s", m.DropPiece().Symbol(SideWhite), m.To())
	case MoveTypePromotion:
		return m.From().Notation() + m.To().Notation() + m.Promotion().Symbol(SideBlack)
	default:
		return m.From().Notation() + m.To().Notation()
	}
}
