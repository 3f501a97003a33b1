package board

import (
	"math"

	"github.com/daystram/tinyhouse/position"
)

const (
	Width      = position.MaxComponentScalar
	Height     = position.MaxComponentScalar
	TotalCells = Width * Height

	// MaxMaterial bounds the non-King units of both sides, on board and in reserve.
	MaxMaterial = 8

	// MaxReserve bounds a single reserve count.
	MaxReserve = MaxMaterial

	// MaxFullMove is the largest move number whose ply still fits in uint16.
	MaxFullMove = math.MaxUint16/2 + 1
)

var (
	DefaultStartingLayout = "fhwk/3p/P3/KWHF w - 1"

	maskCol = [Width]bitmap{
		position.FileA: 0x1111,
		position.FileB: 0x2222,
		position.FileC: 0x4444,
		position.FileD: 0x8888,
	}
	maskRow = [Height]bitmap{
		position.Rank1: 0x000F,
		position.Rank2: 0x00F0,
		position.Rank3: 0x0F00,
		position.Rank4: 0xF000,
	}
	maskCell [TotalCells]bitmap

	// maskLastRank is the promotion rank of each side.
	maskLastRank = [2 + 1]bitmap{
		SideWhite: maskRow[position.Rank4],
		SideBlack: maskRow[position.Rank1],
	}
)

func init() {
	for pos := position.Pos(0); pos < TotalCells; pos++ {
		maskCell[pos] = 1 << pos
	}
}
