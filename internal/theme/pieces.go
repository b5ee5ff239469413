package theme

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/Mego/chess-gif/pkg/board"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type spriteKey struct {
	piece board.Piece
	size  int
}

type spriteImage = image.RGBA

// PieceSprite rasterizes the sprite for piece at the given square size.
// Results are cached per (piece, size) and must not be mutated.
func (t *Theme) PieceSprite(piece board.Piece, size int) (*image.RGBA, error) {
	if piece.Empty() || size <= 0 {
		return nil, fmt.Errorf("%w: sprite for %q at %d", ErrAssetMissing, piece.Letter(), size)
	}
	key := spriteKey{piece: piece, size: size}

	t.cacheMu.RLock()
	if img, ok := t.cache[key]; ok {
		t.cacheMu.RUnlock()
		return img, nil
	}
	t.cacheMu.RUnlock()

	name := pieceAssetName(piece)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, name)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 {
		w = size
		icon.ViewBox.W = float64(w)
	}
	if h <= 0 {
		h = size
		icon.ViewBox.H = float64(h)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	t.cacheMu.Lock()
	t.cache[key] = img
	t.cacheMu.Unlock()

	return img, nil
}

func pieceAssetName(piece board.Piece) string {
	var prefix string
	if piece.Color == board.White {
		prefix = "w"
	} else {
		prefix = "b"
	}

	var suffix string
	switch piece.Kind {
	case board.King:
		suffix = "K"
	case board.Queen:
		suffix = "Q"
	case board.Rook:
		suffix = "R"
	case board.Bishop:
		suffix = "B"
	case board.Knight:
		suffix = "N"
	case board.Pawn:
		suffix = "P"
	}

	return fmt.Sprintf("assets/pieces/%s%s.svg", prefix, suffix)
}
