package board

import (
	"sync"

	"github.com/daystram/tinyhouse/position"
)

// zobristSeed is fixed; tablebase keys depend on it.
const zobristSeed = 1070372

type zobristKeys struct {
	piece   [2 + 1][PieceKing + 1][TotalCells]uint64
	reserve [2 + 1][PieceKing + 1][MaxReserve + 1]uint64 // count 0 hashes to 0
	black   uint64
}

var (
	zobrist     zobristKeys
	zobristOnce sync.Once
)

func initZobrist() {
	zobristOnce.Do(func() {
		r := NewPseudoRand(zobristSeed)
		for _, s := range []Side{SideWhite, SideBlack} {
			for p := PiecePawn; p <= PieceKing; p++ {
				for pos := position.Pos(0); pos < TotalCells; pos++ {
					zobrist.piece[s][p][pos] = r.Uint64()
				}
			}
			for _, p := range ReservePieces {
				for n := 1; n <= MaxReserve; n++ {
					zobrist.reserve[s][p][n] = r.Uint64()
				}
			}
		}
		zobrist.black = r.Uint64()
	})
}
