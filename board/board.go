package board

import (
	"errors"
	"fmt"

	"github.com/daystram/tinyhouse/position"
)

var (
	ErrInvalidLayout     = errors.New("invalid layout")
	ErrInvalidMove       = errors.New("invalid move")
	ErrInconsistentBoard = errors.New("inconsistent board")
)

// Little-endian rank-file mapping, a1 = bit 0.
type Board struct {
	attacks *AttackTable

	// grid data
	cells    [TotalCells]uint8 // side<<4 | piece
	sides    [2 + 1]bitmap
	pieces   [PieceKing + 1]bitmap
	occupied bitmap
	reserve  [2 + 1][PieceKing + 1]uint8

	// meta
	turn     Side
	hash     uint64
	checkers bitmap
	ply      uint16
	history  []uint64 // hashes of previous positions, oldest first
}

// Undo is everything Apply overwrote that cannot be derived from the move itself.
type Undo struct {
	Move     Move
	Captured Piece
	Hash     uint64
	Checkers bitmap
}

type boardConfig struct {
	layout  string
	attacks *AttackTable
}

type BoardOption func(*boardConfig)

func WithLayout(layout string) BoardOption {
	return func(cfg *boardConfig) {
		cfg.layout = layout
	}
}

func WithAttackTable(t *AttackTable) BoardOption {
	return func(cfg *boardConfig) {
		cfg.attacks = t
	}
}

func NewBoard(opts ...BoardOption) (*Board, error) {
	cfg := &boardConfig{
		layout: DefaultStartingLayout,
	}
	for _, f := range opts {
		f(cfg)
	}
	if cfg.attacks == nil {
		cfg.attacks = DefaultAttackTable()
	}
	initZobrist()

	b := &Board{
		attacks: cfg.attacks,
		history: make([]uint64, 0, 64),
	}
	if err := UnmarshalLayout(cfg.layout, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) Turn() Side {
	return b.turn
}

// Hash is the state key: board contents, side to move and reserves.
func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Ply() uint16 {
	return b.ply
}

func (b *Board) FullMoveClock() uint16 {
	return b.ply/2 + 1
}

func (b *Board) Reserve(s Side, p Piece) uint8 {
	return b.reserve[s][p]
}

func (b *Board) Checkers() bitmap {
	return b.checkers
}

func (b *Board) InCheck() bool {
	return b.checkers != 0
}

func (b *Board) PieceAt(pos position.Pos) (Side, Piece) {
	c := b.cells[pos]
	return Side(c >> 4), Piece(c & 0xF)
}

func (b *Board) GetBitmap(s Side, p Piece) bitmap {
	return b.sides[s] & b.pieces[p]
}

func (b *Board) KingPos(s Side) position.Pos {
	return b.GetBitmap(s, PieceKing).LS1B()
}

// Attacks exposes the table the board was built with.
func (b *Board) Attacks() *AttackTable {
	return b.attacks
}

func (b *Board) put(s Side, p Piece, pos position.Pos) {
	b.cells[pos] = uint8(s)<<4 | uint8(p)
	b.sides[s].Set(pos)
	b.pieces[p].Set(pos)
	b.occupied.Set(pos)
	b.hash ^= zobrist.piece[s][p][pos]
}

func (b *Board) remove(pos position.Pos) (Side, Piece) {
	s, p := b.PieceAt(pos)
	b.cells[pos] = 0
	b.sides[s].Unset(pos)
	b.pieces[p].Unset(pos)
	b.occupied.Unset(pos)
	b.hash ^= zobrist.piece[s][p][pos]
	return s, p
}

func (b *Board) setReserve(s Side, p Piece, n uint8) {
	b.hash ^= zobrist.reserve[s][p][b.reserve[s][p]] ^ zobrist.reserve[s][p][n]
	b.reserve[s][p] = n
}

// attackersTo returns the pieces of side s attacking pos.
func (b *Board) attackersTo(pos position.Pos, s Side) bitmap {
	t := b.attacks
	bm := t.king[pos]&b.GetBitmap(s, PieceKing) |
		t.wazir[pos]&b.GetBitmap(s, PieceWazir) |
		t.ferz[pos]&b.GetBitmap(s, PieceFerz) |
		t.pawn[s.Opposite()][pos]&b.GetBitmap(s, PiecePawn)
	// the horse is not symmetric: its leg sits next to the horse, not the target
	for horses := b.GetBitmap(s, PieceHorse); horses != 0; {
		from := horses.PopLS1B()
		if t.Horse(from, b.occupied).Has(pos) {
			bm.Set(from)
		}
	}
	return bm
}

func (b *Board) isKingChecked(s Side) bool {
	return b.attackersTo(b.KingPos(s), s.Opposite()) != 0
}

// Apply plays a pseudo-legal move for the side to move and returns the record
// needed to take it back.
func (b *Board) Apply(mv Move) Undo {
	u := Undo{
		Move:     mv,
		Hash:     b.hash,
		Checkers: b.checkers,
	}
	s := b.turn
	to := mv.To()

	if p := mv.DropPiece(); p != PieceUnknown {
		b.setReserve(s, p, b.reserve[s][p]-1)
		b.put(s, p, to)
	} else {
		if _, captured := b.PieceAt(to); captured != PieceUnknown {
			b.remove(to)
			b.setReserve(s, captured, b.reserve[s][captured]+1)
			u.Captured = captured
		}
		_, p := b.remove(mv.From())
		if prom := mv.Promotion(); prom != PieceUnknown {
			p = prom
		}
		b.put(s, p, to)
	}

	b.history = append(b.history, u.Hash)
	b.ply++
	b.turn = s.Opposite()
	b.hash ^= zobrist.black
	b.checkers = b.attackersTo(b.KingPos(b.turn), s)
	return u
}

// Undo reverts the move recorded in u. It must be the last applied move.
func (b *Board) Undo(u Undo) {
	b.turn = b.turn.Opposite()
	s := b.turn
	mv := u.Move
	to := mv.To()

	if p := mv.DropPiece(); p != PieceUnknown {
		b.remove(to)
		b.reserve[s][p]++
	} else {
		_, p := b.remove(to)
		if mv.Promotion() != PieceUnknown {
			p = PiecePawn
		}
		b.put(s, p, mv.From())
		if u.Captured != PieceUnknown {
			b.put(s.Opposite(), u.Captured, to)
			b.reserve[s][u.Captured]--
		}
	}

	b.history = b.history[:len(b.history)-1]
	b.ply--
	b.hash = u.Hash
	b.checkers = u.Checkers
}

// IsRepetition reports whether the current position has occurred at least n
// times, counting itself, with the same side to move.
func (b *Board) IsRepetition(n int) bool {
	count := 1
	for i := len(b.history) - 2; i >= 0; i -= 2 {
		if b.history[i] == b.hash {
			if count++; count >= n {
				return true
			}
		}
	}
	return count >= n
}

func (b *Board) State() State {
	if len(b.GenerateMoves()) == 0 {
		if b.InCheck() {
			return StateCheckmate
		}
		return StateStalemate
	}
	if b.IsRepetition(3) {
		return StateRepetition
	}
	if b.InCheck() {
		return StateCheck
	}
	return StateRunning
}

func (b *Board) Clone() *Board {
	bb := *b
	bb.history = make([]uint64, len(b.history), cap(b.history))
	copy(bb.history, b.history)
	return &bb
}

func (b *Board) computeHash() uint64 {
	var h uint64
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		if s, p := b.PieceAt(pos); p != PieceUnknown {
			h ^= zobrist.piece[s][p][pos]
		}
	}
	for _, s := range []Side{SideWhite, SideBlack} {
		for _, p := range ReservePieces {
			h ^= zobrist.reserve[s][p][b.reserve[s][p]]
		}
	}
	if b.turn == SideBlack {
		h ^= zobrist.black
	}
	return h
}

// Validate recomputes every derived field from the mailbox and reports the
// first disagreement.
func (b *Board) Validate() error {
	if err := b.checkRules(); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistentBoard, err)
	}
	var sides [2 + 1]bitmap
	var pieces [PieceKing + 1]bitmap
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		s, p := b.PieceAt(pos)
		if p == PieceUnknown {
			if s != SideUnknown {
				return fmt.Errorf("%w: stray side on empty %s", ErrInconsistentBoard, pos)
			}
			continue
		}
		sides[s].Set(pos)
		pieces[p].Set(pos)
	}
	if sides != b.sides || pieces != b.pieces || sides[SideWhite]|sides[SideBlack] != b.occupied {
		return fmt.Errorf("%w: bitmaps disagree with cells", ErrInconsistentBoard)
	}
	if h := b.computeHash(); h != b.hash {
		return fmt.Errorf("%w: hash %016x, recomputed %016x", ErrInconsistentBoard, b.hash, h)
	}
	if c := b.attackersTo(b.KingPos(b.turn), b.turn.Opposite()); c != b.checkers {
		return fmt.Errorf("%w: checkers %04x, recomputed %04x", ErrInconsistentBoard, b.checkers, c)
	}
	return nil
}

// checkRules verifies the placement rules shared by layout parsing and validation.
func (b *Board) checkRules() error {
	if b.turn != SideWhite && b.turn != SideBlack {
		return errors.New("no side to move")
	}
	var material int
	for _, s := range []Side{SideWhite, SideBlack} {
		if n := b.GetBitmap(s, PieceKing).BitCount(); n != 1 {
			return fmt.Errorf("%s has %d kings", s, n)
		}
		if b.GetBitmap(s, PiecePawn)&maskLastRank[s] != 0 {
			return fmt.Errorf("%s pawn on last rank", s)
		}
		for _, p := range ReservePieces {
			material += int(b.GetBitmap(s, p).BitCount()) + int(b.reserve[s][p])
		}
		if b.reserve[s][PieceKing] != 0 {
			return fmt.Errorf("%s king in reserve", s)
		}
	}
	if material > MaxMaterial {
		return fmt.Errorf("material %d exceeds %d", material, MaxMaterial)
	}
	if b.isKingChecked(b.turn.Opposite()) {
		return fmt.Errorf("%s king capturable", b.turn.Opposite())
	}
	return nil
}
