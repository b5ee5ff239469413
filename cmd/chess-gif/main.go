package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Mego/chess-gif/internal/gamereader"
	"github.com/Mego/chess-gif/pkg/board"
	"github.com/Mego/chess-gif/pkg/chessgif"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "game":
		runGame(os.Args[2:])
	case "position":
		runPosition(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  chess-gif game [-flip] [-coords] [-o out.gif] [pgn]   render a game gif (reads pgn from stdin if omitted)
  chess-gif position [-flip] [-coords] [-o out.png] fen render a single position png`)
}

func runGame(args []string) {
	fs := flag.NewFlagSet("game", flag.ExitOnError)
	flip := fs.Bool("flip", false, "display the board from black's perspective")
	coords := fs.Bool("coords", false, "draw rank and file labels")
	output := fs.String("o", "game.gif", "output filename")
	square := fs.Int("square", chessgif.DefaultSquareSize, "square size in pixels")
	fs.Parse(args)

	pgn := ""
	if fs.NArg() > 0 {
		pgn = fs.Arg(0)
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		pgn = string(raw)
	}

	positions, metas, err := gamereader.FromPGN(pgn)
	if err != nil {
		log.Fatalf("parse game: %v", err)
	}
	gif, err := chessgif.RenderGame(positions, metas, chessgif.Options{
		SquareSize:  *square,
		Coordinates: *coords,
		Flipped:     *flip,
	})
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(*output, gif, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
}

func runPosition(args []string) {
	fs := flag.NewFlagSet("position", flag.ExitOnError)
	flip := fs.Bool("flip", false, "display the board from black's perspective")
	coords := fs.Bool("coords", false, "draw rank and file labels")
	output := fs.String("o", "position.png", "output filename")
	square := fs.Int("square", chessgif.DefaultSquareSize, "square size in pixels")
	variant := fs.String("variant", "standard", "rule variant of the position")
	fs.Parse(args)

	if fs.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	v, err := board.ParseVariant(*variant)
	if err != nil {
		log.Fatalf("variant: %v", err)
	}
	pos, err := board.ParseFEN(fs.Arg(0), v)
	if err != nil {
		log.Fatalf("parse fen: %v", err)
	}
	png, err := chessgif.RenderPosition(pos, nil, chessgif.Options{
		SquareSize:  *square,
		Coordinates: *coords,
		Flipped:     *flip,
	})
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(*output, png, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
}
