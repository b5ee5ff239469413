package theme

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mego/chess-gif/pkg/board"
)

func TestDefaultColors(t *testing.T) {
	th, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if th.Colors.Light != (color.RGBA{0xff, 0xce, 0x9e, 0xff}) {
		t.Fatalf("light = %+v", th.Colors.Light)
	}
	if th.Colors.Dark != (color.RGBA{0xd1, 0x8b, 0x47, 0xff}) {
		t.Fatalf("dark = %+v", th.Colors.Dark)
	}
	// Highlights are translucent.
	if th.Colors.MoveFrom.A == 0xff || th.Colors.Check.A == 0xff {
		t.Fatalf("highlights should carry alpha: from=%+v check=%+v", th.Colors.MoveFrom, th.Colors.Check)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("light: \"#101010\"\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	th, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Colors.Light != (color.RGBA{0x10, 0x10, 0x10, 0xff}) {
		t.Fatalf("override not applied: %+v", th.Colors.Light)
	}
	// Keys absent from the override keep the embedded defaults.
	if th.Colors.Dark != (color.RGBA{0xd1, 0x8b, 0x47, 0xff}) {
		t.Fatalf("default lost under override: %+v", th.Colors.Dark)
	}
}

func TestLoadMissingOverrideFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("expected ErrAssetMissing, got %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#9bc700")
	if err != nil {
		t.Fatalf("parseHexColor: %v", err)
	}
	if c != (color.RGBA{0x9b, 0xc7, 0x00, 0xff}) {
		t.Fatalf("rgb = %+v", c)
	}
	c, err = parseHexColor("9bc70066")
	if err != nil {
		t.Fatalf("parseHexColor: %v", err)
	}
	if c != (color.RGBA{0x9b, 0xc7, 0x00, 0x66}) {
		t.Fatalf("rgba = %+v", c)
	}
	for _, bad := range []string{"", "#12345", "#12345g", "#1234567"} {
		if _, err := parseHexColor(bad); err == nil {
			t.Fatalf("parseHexColor(%q) should fail", bad)
		}
	}
}

func TestPieceSpriteCache(t *testing.T) {
	th, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	p := board.Piece{Kind: board.Knight, Color: board.White}
	a, err := th.PieceSprite(p, 50)
	if err != nil {
		t.Fatalf("PieceSprite: %v", err)
	}
	if got := a.Bounds().Dx(); got != 50 {
		t.Fatalf("sprite width = %d, want 50", got)
	}
	b, err := th.PieceSprite(p, 50)
	if err != nil {
		t.Fatalf("PieceSprite again: %v", err)
	}
	if a != b {
		t.Fatalf("second lookup should hit the cache")
	}
	c, err := th.PieceSprite(p, 32)
	if err != nil {
		t.Fatalf("PieceSprite at 32: %v", err)
	}
	if c == a || c.Bounds().Dx() != 32 {
		t.Fatalf("distinct size should rasterize a distinct image")
	}
}

func TestPieceSpriteDeterministic(t *testing.T) {
	p := board.Piece{Kind: board.Queen, Color: board.Black}
	t1, _ := Default()
	t2, _ := Default()
	a, err := t1.PieceSprite(p, 40)
	if err != nil {
		t.Fatalf("PieceSprite: %v", err)
	}
	b, err := t2.PieceSprite(p, 40)
	if err != nil {
		t.Fatalf("PieceSprite: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("rasterization should be deterministic")
	}
}

func TestPieceSpriteRejectsEmpty(t *testing.T) {
	th, _ := Default()
	if _, err := th.PieceSprite(board.NoPiece, 50); !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("empty piece: got %v", err)
	}
	p := board.Piece{Kind: board.Pawn, Color: board.White}
	if _, err := th.PieceSprite(p, 0); !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("zero size: got %v", err)
	}
}
