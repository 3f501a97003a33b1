package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/daystram/tinyhouse/board"
)

func movegen(args []string) error {
	fs := flag.NewFlagSet("movegen", flag.ContinueOnError)
	layout := fs.String("layout", board.DefaultStartingLayout, "layout to expand")
	draw := fs.Bool("draw", false, "draw the board after each move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	b, err := board.NewBoard(board.WithLayout(*layout))
	if err != nil {
		return err
	}
	fmt.Println(b.Dump())
	fmt.Println(b.Draw())
	fmt.Println(b.State())
	dumpMoves(b)

	if *draw {
		for _, mv := range b.GenerateMoves() {
			u := b.Apply(mv)
			fmt.Println(mv)
			fmt.Println(b.Draw())
			fmt.Println(b.Layout())
			b.Undo(u)
		}
	}
	return nil
}

func dumpMoves(b *board.Board) {
	mvs := b.GenerateMoves()
	for i, mv := range mvs {
		_, p := b.PieceAt(mv.From())
		if mv.IsDrop() {
			p = mv.DropPiece()
		}
		fmt.Printf("option %*d: [%-5s] %s %s => %s (cap=%v) (drp=%v) (pro=%s)\n",
			len(strconv.Itoa(len(mvs))), i+1, mv, p.Name(), mv.From(), mv.To(), b.IsCapture(mv), mv.IsDrop(), mv.Promotion().Name())
	}
}
