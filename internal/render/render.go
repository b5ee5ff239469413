// Package render composites one position into a full-resolution RGBA buffer:
// checkerboard, piece sprites, overlay indicators, coordinate labels, and the
// variant side panel. Rendering is deterministic: identical inputs yield
// byte-identical buffers.
package render

import (
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/Mego/chess-gif/internal/overlay"
	"github.com/Mego/chess-gif/internal/theme"
	"github.com/Mego/chess-gif/pkg/board"
)

const (
	boardSquares = 8
	coordMargin  = 16
)

// Renderer draws positions for a fixed theme and geometry.
type Renderer struct {
	theme       *theme.Theme
	squareSize  int
	coordinates bool
}

// New builds a renderer. squareSize is the pixel edge of one board square.
func New(t *theme.Theme, squareSize int, coordinates bool) (*Renderer, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil theme", theme.ErrAssetMissing)
	}
	if squareSize < 8 {
		return nil, fmt.Errorf("%w: square size %d", board.ErrInvalid, squareSize)
	}
	return &Renderer{theme: t, squareSize: squareSize, coordinates: coordinates}, nil
}

// panelWidth is the side panel reserved for pockets and check counters.
func (r *Renderer) panelWidth(v board.Variant) int {
	if v == board.Crazyhouse || v == board.ThreeCheck {
		return r.squareSize * 2
	}
	return 0
}

func (r *Renderer) margin() int {
	if r.coordinates {
		return coordMargin
	}
	return 0
}

// CanvasSize returns the fixed frame dimensions for the variant. All frames
// of one job share them.
func (r *Renderer) CanvasSize(v board.Variant) (w, h int) {
	boardPx := r.squareSize * boardSquares
	return r.margin() + boardPx + r.panelWidth(v), boardPx + r.margin()
}

// boardOrigin is the top-left corner of square a8 (or h1 when flipped).
func (r *Renderer) boardOrigin() image.Point {
	return image.Point{X: r.margin(), Y: 0}
}

// squareRect maps a square to canvas pixels. Flipping is a point mirror, so
// h1 takes a8's place.
func (r *Renderer) squareRect(sq board.Square, flipped bool) image.Rectangle {
	col := sq.File()
	row := 7 - sq.Rank()
	if flipped {
		col = 7 - col
		row = 7 - row
	}
	o := r.boardOrigin()
	x := o.X + col*r.squareSize
	y := o.Y + row*r.squareSize
	return image.Rect(x, y, x+r.squareSize, y+r.squareSize)
}

// Render draws pos with its overlay into a fresh buffer.
func (r *Renderer) Render(pos *board.Position, ov overlay.Overlay, flipped bool) (*image.RGBA, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil position", board.ErrInvalid)
	}
	w, h := r.CanvasSize(pos.Variant)
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	imagedraw.Draw(img, img.Bounds(), image.NewUniform(r.theme.Colors.PanelBG), image.Point{}, imagedraw.Src)

	r.drawSquares(img, flipped)
	if err := r.drawPieces(img, pos, flipped); err != nil {
		return nil, err
	}
	r.drawOverlay(img, ov, flipped)
	if r.coordinates {
		r.drawCoordinates(img, flipped)
	}
	if ov.Pockets != nil {
		if err := r.drawPockets(img, ov.Pockets, flipped); err != nil {
			return nil, err
		}
	}
	if ov.ChecksLeft != nil {
		r.drawChecksLeft(img, ov.ChecksLeft, flipped)
	}
	return img, nil
}

func (r *Renderer) drawSquares(img *image.RGBA, flipped bool) {
	light := image.NewUniform(r.theme.Colors.Light)
	dark := image.NewUniform(r.theme.Colors.Dark)
	for sq := board.Square(0); sq < 64; sq++ {
		fill := dark
		if (sq.File()+sq.Rank())%2 == 1 {
			fill = light
		}
		imagedraw.Draw(img, r.squareRect(sq, flipped), fill, image.Point{}, imagedraw.Src)
	}
}

func (r *Renderer) drawPieces(img *image.RGBA, pos *board.Position, flipped bool) error {
	for sq := board.Square(0); sq < 64; sq++ {
		piece := pos.PieceAt(sq)
		if piece.Empty() {
			continue
		}
		if piece.Kind > board.King {
			return fmt.Errorf("%w: piece kind %d on %s", board.ErrInvalid, piece.Kind, sq)
		}
		sprite, err := r.theme.PieceSprite(piece, r.squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, r.squareRect(sq, flipped), sprite, image.Point{}, imagedraw.Over)
	}
	return nil
}

func (r *Renderer) drawOverlay(img *image.RGBA, ov overlay.Overlay, flipped bool) {
	for _, ann := range ov.Squares {
		rect := r.squareRect(ann.Square, flipped)
		switch ann.Kind {
		case overlay.KindMoveFrom:
			imagedraw.Draw(img, rect, image.NewUniform(r.theme.Colors.MoveFrom), image.Point{}, imagedraw.Over)
		case overlay.KindMoveTo:
			imagedraw.Draw(img, rect, image.NewUniform(r.theme.Colors.MoveTo), image.Point{}, imagedraw.Over)
		case overlay.KindCheck:
			imagedraw.Draw(img, rect, image.NewUniform(r.theme.Colors.Check), image.Point{}, imagedraw.Over)
		case overlay.KindExploded:
			imagedraw.Draw(img, rect, image.NewUniform(r.theme.Colors.Exploded), image.Point{}, imagedraw.Over)
			r.drawCross(img, rect)
		}
	}
}

// drawCross marks an exploded square with two diagonals so it reads
// differently from a plain capture even on small boards.
func (r *Renderer) drawCross(img *image.RGBA, rect image.Rectangle) {
	inset := r.squareSize / 6
	thick := r.squareSize / 16
	if thick < 1 {
		thick = 1
	}
	clr := color.RGBA{0, 0, 0, 255}
	n := rect.Dx() - 2*inset
	for i := 0; i <= n; i++ {
		for t := -thick; t <= thick; t++ {
			blendPixel(img, rect.Min.X+inset+i, rect.Min.Y+inset+i+t, clr)
			blendPixel(img, rect.Min.X+inset+i, rect.Max.Y-inset-i+t, clr)
		}
	}
}

func (r *Renderer) drawCoordinates(img *image.RGBA, flipped bool) {
	face := r.theme.Face()
	drawer := &font.Drawer{
		Dst:  img,
		Face: face,
		Src:  image.NewUniform(r.theme.Colors.CoordText),
	}
	ascent := face.Metrics().Ascent.Ceil()
	o := r.boardOrigin()
	boardEndY := o.Y + boardSquares*r.squareSize

	for row := 0; row < boardSquares; row++ {
		rank := 7 - row
		if flipped {
			rank = row
		}
		baseline := o.Y + row*r.squareSize + r.squareSize/2 + ascent/2
		drawCenteredText(drawer, string(byte('1'+rank)), r.margin()/2, baseline)
	}
	for col := 0; col < boardSquares; col++ {
		file := col
		if flipped {
			file = 7 - col
		}
		centerX := o.X + col*r.squareSize + r.squareSize/2
		drawCenteredText(drawer, string(byte('a'+file)), centerX, boardEndY+ascent)
	}
}

// drawPockets renders both reserves in the side panel: the side shown at the
// bottom of the board occupies the lower half.
func (r *Renderer) drawPockets(img *image.RGBA, pockets *[2]board.Pocket, flipped bool) error {
	top, bottom := board.Black, board.White
	if flipped {
		top, bottom = board.White, board.Black
	}
	half := boardSquares * r.squareSize / 2
	if err := r.drawPocketHalf(img, pockets[top], top, 0, half); err != nil {
		return err
	}
	return r.drawPocketHalf(img, pockets[bottom], bottom, half, half)
}

func (r *Renderer) drawPocketHalf(img *image.RGBA, pocket board.Pocket, c board.Color, y0, height int) error {
	panelX := r.margin() + boardSquares*r.squareSize
	glyph := r.squareSize / 2
	drawer := &font.Drawer{
		Dst:  img,
		Face: r.theme.Face(),
		Src:  image.NewUniform(r.theme.Colors.PanelText),
	}
	ascent := r.theme.Face().Metrics().Ascent.Ceil()

	row := 0
	for _, kind := range []board.PieceKind{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen} {
		count := pocket.Count(kind)
		if count == 0 {
			continue
		}
		y := y0 + row*glyph
		if y+glyph > y0+height {
			break
		}
		sprite, err := r.theme.PieceSprite(board.Piece{Kind: kind, Color: c}, glyph)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, image.Rect(panelX, y, panelX+glyph, y+glyph), sprite, image.Point{}, imagedraw.Over)
		drawer.Dot = fixed.P(panelX+glyph+4, y+glyph/2+ascent/2)
		drawer.DrawString(fmt.Sprintf("x%d", count))
		row++
	}
	return nil
}

func (r *Renderer) drawChecksLeft(img *image.RGBA, checks *[2]int, flipped bool) {
	top, bottom := board.Black, board.White
	if flipped {
		top, bottom = board.White, board.Black
	}
	panelX := r.margin() + boardSquares*r.squareSize
	drawer := &font.Drawer{
		Dst:  img,
		Face: r.theme.Face(),
		Src:  image.NewUniform(r.theme.Colors.PanelText),
	}
	ascent := r.theme.Face().Metrics().Ascent.Ceil()
	boardPx := boardSquares * r.squareSize

	drawer.Dot = fixed.P(panelX+4, r.squareSize/2+ascent/2)
	drawer.DrawString(fmt.Sprintf("+%d", checks[top]))
	drawer.Dot = fixed.P(panelX+4, boardPx-r.squareSize/2+ascent/2)
	drawer.DrawString(fmt.Sprintf("+%d", checks[bottom]))
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0

	var dstR, dstG, dstB float64
	if dstA > 0 {
		inv := 1.0 / dstA
		dstR = float64(dst.R) / 255.0 * inv
		dstG = float64(dst.G) / 255.0 * inv
		dstB = float64(dst.B) / 255.0 * inv
	}

	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		img.SetRGBA(x, y, color.RGBA{})
		return
	}

	outR := (srcR*srcA + dstR*dstA*(1-srcA)) / outA
	outG := (srcG*srcA + dstG*dstA*(1-srcA)) / outA
	outB := (srcB*srcA + dstB*dstA*(1-srcA)) / outA

	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(outR * outA * 255.0),
		G: floatToUint8(outG * outA * 255.0),
		B: floatToUint8(outB * outA * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
