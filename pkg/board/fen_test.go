package board

import (
	"errors"
	"testing"
)

func TestParseFENStartingPosition(t *testing.T) {
	pos, err := ParseFEN(StartingFEN, Standard)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.Turn != White {
		t.Fatalf("turn = %v, want white", pos.Turn)
	}
	e1, _ := ParseSquare("e1")
	if pc := pos.PieceAt(e1); pc.Kind != King || pc.Color != White {
		t.Fatalf("e1 = %+v, want white king", pc)
	}
	d8, _ := ParseSquare("d8")
	if pc := pos.PieceAt(d8); pc.Kind != Queen || pc.Color != Black {
		t.Fatalf("d8 = %+v, want black queen", pc)
	}
	e4, _ := ParseSquare("e4")
	if !pos.PieceAt(e4).Empty() {
		t.Fatalf("e4 should be empty")
	}
	if got := pos.FEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w" {
		t.Fatalf("FEN() = %q", got)
	}
}

func TestParseFENSideToMove(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/8/8/8/K6k b - - 0 1", Standard)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.Turn != Black {
		t.Fatalf("turn = %v, want black", pos.Turn)
	}
	if _, err := ParseFEN("8/8/8/8/8/8/8/K6k x", Standard); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad side field, got %v", err)
	}
}

func TestParseFENCrazyhousePocket(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR[NNpq] w KQkq - 0 1", Crazyhouse)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got := pos.Pockets[White].Count(Knight); got != 2 {
		t.Fatalf("white knights in pocket = %d, want 2", got)
	}
	if got := pos.Pockets[Black].Count(Pawn); got != 1 {
		t.Fatalf("black pawns in pocket = %d, want 1", got)
	}
	if got := pos.Pockets[Black].Count(Queen); got != 1 {
		t.Fatalf("black queens in pocket = %d, want 1", got)
	}
	if _, err := ParseFEN("8/8/8/8/8/8/8/K6k[K] w", Crazyhouse); !errors.Is(err, ErrInvalid) {
		t.Fatalf("kings are not pocketable, got %v", err)
	}
	if _, err := ParseFEN("8/8/8/8/8/8/8/K6k[pq w", Crazyhouse); !errors.Is(err, ErrInvalid) {
		t.Fatalf("unterminated pocket, got %v", err)
	}
}

func TestParseFENPromotedMarker(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4Q~3/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1", Crazyhouse)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	e4, _ := ParseSquare("e4")
	if pc := pos.PieceAt(e4); pc.Kind != Queen || pc.Color != White {
		t.Fatalf("e4 = %+v, want white queen", pc)
	}
}

func TestParseFENThreeCheckField(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 2+3 0 1", ThreeCheck)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.ChecksLeft != [2]int{2, 3} {
		t.Fatalf("checks left = %v, want [2 3]", pos.ChecksLeft)
	}

	// Without the field the variant default applies.
	pos, err = ParseFEN(StartingFEN, ThreeCheck)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.ChecksLeft != [2]int{3, 3} {
		t.Fatalf("default checks left = %v, want [3 3]", pos.ChecksLeft)
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8",               // seven ranks
		"9/8/8/8/8/8/8/8 w",           // overfull rank
		"ppppppppp/8/8/8/8/8/8/8 w",   // nine files
		"xnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w", // bad letter
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen, Standard); !errors.Is(err, ErrInvalid) {
			t.Fatalf("ParseFEN(%q): expected ErrInvalid, got %v", fen, err)
		}
	}
}

func TestKingSquare(t *testing.T) {
	pos, err := ParseFEN("8/8/8/3k4/8/8/8/K7 w - - 0 1", Standard)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	sq, ok := pos.KingSquare(Black)
	if !ok || sq.String() != "d5" {
		t.Fatalf("black king at %v ok=%v, want d5", sq, ok)
	}
	sq, ok = pos.KingSquare(White)
	if !ok || sq.String() != "a1" {
		t.Fatalf("white king at %v ok=%v, want a1", sq, ok)
	}
}
