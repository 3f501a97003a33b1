package board

type Piece uint8

const (
	PieceUnknown Piece = iota
	PiecePawn
	PieceHorse
	PieceFerz
	PieceWazir
	PieceKing
)

var (
	// PawnPromoteCandidates represents the candidates for pawn promotion, in generation order.
	PawnPromoteCandidates = []Piece{PieceHorse, PieceFerz, PieceWazir}

	// ReservePieces are the piece types that can be held in reserve, in drop generation order.
	ReservePieces = []Piece{PiecePawn, PieceHorse, PieceFerz, PieceWazir}
)

func (p Piece) String() string {
	return p.Name()
}

func (p Piece) Name() string {
	switch p {
	case PiecePawn:
		return "Pawn"
	case PieceHorse:
		return "Horse"
	case PieceFerz:
		return "Ferz"
	case PieceWazir:
		return "Wazir"
	case PieceKing:
		return "King"
	default:
		return ""
	}
}

// Symbol returns the layout letter, uppercase for White.
func (p Piece) Symbol(s Side) string {
	var sym rune
	switch p {
	case PiecePawn:
		sym = 'P'
	case PieceHorse:
		sym = 'H'
	case PieceFerz:
		sym = 'F'
	case PieceWazir:
		sym = 'W'
	case PieceKing:
		sym = 'K'
	default:
		return ""
	}
	if s == SideBlack {
		sym |= 0x20 // lowercase is +32 uppercase
	}
	return string(sym)
}

// IsReservable reports whether the piece type can be captured into a reserve.
func (p Piece) IsReservable() bool {
	return p >= PiecePawn && p <= PieceWazir
}

func parsePieceSymbol(r rune) (Side, Piece, bool) {
	s := SideWhite
	if r >= 'a' && r <= 'z' {
		s = SideBlack
		r &^= 0x20
	}
	switch r {
	case 'P':
		return s, PiecePawn, true
	case 'H':
		return s, PieceHorse, true
	case 'F':
		return s, PieceFerz, true
	case 'W':
		return s, PieceWazir, true
	case 'K':
		return s, PieceKing, true
	default:
		return SideUnknown, PieceUnknown, false
	}
}
