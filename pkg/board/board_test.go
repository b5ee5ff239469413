package board

import (
	"errors"
	"testing"
)

func TestSquareRoundTrip(t *testing.T) {
	for file := 0; file < 8; file++ {
		for rank := 0; rank < 8; rank++ {
			sq := NewSquare(file, rank)
			if sq.File() != file || sq.Rank() != rank {
				t.Fatalf("square %d: got file=%d rank=%d", sq, sq.File(), sq.Rank())
			}
			parsed, err := ParseSquare(sq.String())
			if err != nil {
				t.Fatalf("ParseSquare(%q): %v", sq.String(), err)
			}
			if parsed != sq {
				t.Fatalf("round trip %q: got %d want %d", sq.String(), parsed, sq)
			}
		}
	}
}

func TestParseSquareRejectsBad(t *testing.T) {
	for _, s := range []string{"", "e", "e9", "i4", "44", "e4x"} {
		if _, err := ParseSquare(s); !errors.Is(err, ErrInvalid) {
			t.Fatalf("ParseSquare(%q): expected ErrInvalid, got %v", s, err)
		}
	}
}

func TestPieceLetter(t *testing.T) {
	if l := (Piece{Knight, White}).Letter(); l != 'N' {
		t.Fatalf("white knight letter: %c", l)
	}
	if l := (Piece{Queen, Black}).Letter(); l != 'q' {
		t.Fatalf("black queen letter: %c", l)
	}
}

func TestParseVariantNames(t *testing.T) {
	cases := map[string]Variant{
		"":                 Standard,
		"Standard":         Standard,
		"Three-check":      ThreeCheck,
		"3check":           ThreeCheck,
		"Crazyhouse":       Crazyhouse,
		"Atomic":           Atomic,
		"King of the Hill": KingOfTheHill,
		"giveaway":         Antichess,
	}
	for in, want := range cases {
		got, err := ParseVariant(in)
		if err != nil {
			t.Fatalf("ParseVariant(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseVariant(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseVariant("fog of war"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown variant, got %v", err)
	}
}

func TestMoveMetaValidate(t *testing.T) {
	var nilMeta *MoveMeta
	if err := nilMeta.Validate(); err != nil {
		t.Fatalf("nil meta: %v", err)
	}
	ok := &MoveMeta{From: 12, To: 28}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid meta: %v", err)
	}
	drop := &MoveMeta{From: 200, To: 28, IsDrop: true}
	if err := drop.Validate(); err != nil {
		t.Fatalf("drop meta should ignore origin: %v", err)
	}
	bad := &MoveMeta{From: 12, To: 99}
	if err := bad.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for off-board destination, got %v", err)
	}
	boom := &MoveMeta{From: 12, To: 28, Exploded: []Square{27, 120}}
	if err := boom.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for off-board explosion, got %v", err)
	}
}

func TestPocketTotals(t *testing.T) {
	var p Pocket
	p[Pawn] = 3
	p[Queen] = 1
	if p.Count(Pawn) != 3 || p.Count(Queen) != 1 || p.Count(Rook) != 0 {
		t.Fatalf("unexpected counts: %v", p)
	}
	if p.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", p.Total())
	}
}
