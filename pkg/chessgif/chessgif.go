// Package chessgif renders an ordered sequence of chess positions, from any
// of the supported rule variants, into a single animated GIF replay.
//
// The rules collaborator supplies the positions and per-ply move metadata;
// this package owns overlays, compositing, frame timing, minimal frame
// deltas, palette quantization, and the byte-exact container.
package chessgif

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/Mego/chess-gif/internal/anim"
	"github.com/Mego/chess-gif/internal/gifenc"
	"github.com/Mego/chess-gif/internal/overlay"
	"github.com/Mego/chess-gif/internal/render"
	"github.com/Mego/chess-gif/internal/theme"
	"github.com/Mego/chess-gif/pkg/board"
)

// DefaultSquareSize matches the classic 400x400 board.
const DefaultSquareSize = 50

// Options is the configuration surface of one render job. Zero values pick
// the defaults.
type Options struct {
	// SquareSize is the pixel edge of one board square.
	SquareSize int
	// DelayCS is the per-ply display duration in hundredths of a second;
	// FinalDelayCS holds the end position.
	DelayCS      int
	FinalDelayCS int
	// LoopCount follows the GIF convention: 0 loops forever, n > 0 repeats
	// n times, negative plays once.
	LoopCount int
	// Coordinates draws rank and file labels along the board edges.
	Coordinates bool
	// Flipped renders from black's perspective.
	Flipped bool
	// ThemeFile optionally overrides the embedded theme colors (YAML).
	ThemeFile string
	// Workers caps parallel frame rendering; zero means GOMAXPROCS.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.SquareSize == 0 {
		o.SquareSize = DefaultSquareSize
	}
	if o.DelayCS == 0 {
		o.DelayCS = anim.DefaultDelayCS
	}
	if o.FinalDelayCS == 0 {
		o.FinalDelayCS = anim.DefaultFinalDelayCS
	}
	return o
}

// RenderGame runs the whole pipeline over positions and returns a complete
// GIF byte stream, or an error and nothing. metas[i], when present, describes
// the move that produced positions[i]; metas may be nil.
func RenderGame(positions []*board.Position, metas []*board.MoveMeta, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if len(positions) == 0 {
		return nil, wrapErr(fmt.Errorf("%w: no positions", board.ErrInvalid))
	}
	variant := positions[0].Variant
	for i, p := range positions {
		if p == nil {
			return nil, wrapErr(fmt.Errorf("%w: nil position at ply %d", board.ErrInvalid, i))
		}
		if p.Variant != variant {
			return nil, wrapErr(fmt.Errorf("%w: variant changes at ply %d", board.ErrInvalid, i))
		}
	}

	t, err := theme.Load(opts.ThemeFile)
	if err != nil {
		return nil, wrapErr(err)
	}
	r, err := render.New(t, opts.SquareSize, opts.Coordinates)
	if err != nil {
		return nil, wrapErr(err)
	}

	composer := anim.NewComposer(r)
	composer.DelayCS = opts.DelayCS
	composer.FinalDelayCS = opts.FinalDelayCS
	composer.Workers = opts.Workers

	frames, err := composer.Compose(positions, metas, opts.Flipped)
	if err != nil {
		return nil, wrapErr(err)
	}

	images := make([]*image.RGBA, len(frames))
	for i := range frames {
		images[i] = frames[i].Image
	}
	animated := len(frames) > 1

	pal, err := gifenc.BuildPalette(images, animated)
	if err != nil {
		return nil, wrapErr(err)
	}

	w, h := r.CanvasSize(variant)
	var buf bytes.Buffer
	enc, err := gifenc.NewEncoder(&buf, w, h, pal, opts.LoopCount, animated)
	if err != nil {
		return nil, wrapErr(err)
	}

	var prev *image.RGBA
	for _, f := range frames {
		if err := writeFrameDelta(enc, pal, prev, f); err != nil {
			return nil, wrapErr(err)
		}
		prev = f.Image
	}
	if err := enc.Close(); err != nil {
		return nil, wrapErr(err)
	}
	return buf.Bytes(), nil
}

// writeFrameDelta diffs against the previously rendered frame and encodes
// just the changed region. Identical frames still advance the clock through
// a one-pixel transparent update.
func writeFrameDelta(enc *gifenc.Encoder, pal *gifenc.Palette, prev *image.RGBA, f anim.Frame) error {
	region := anim.Diff(prev, f.Image)
	if region.Rect.Empty() {
		return enc.WriteFrame(image.Rect(0, 0, 1, 1),
			[]byte{uint8(pal.TransparentIndex)}, f.DelayCS, region.Disposal)
	}
	var delta *image.RGBA
	if prev != nil && pal.TransparentIndex >= 0 {
		delta = prev
	}
	pix, err := pal.IndexRegion(f.Image, region.Rect, delta)
	if err != nil {
		return err
	}
	return enc.WriteFrame(region.Rect, pix, f.DelayCS, region.Disposal)
}

// RenderPosition composites a single position into a PNG, the still
// counterpart of RenderGame.
func RenderPosition(pos *board.Position, meta *board.MoveMeta, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	t, err := theme.Load(opts.ThemeFile)
	if err != nil {
		return nil, wrapErr(err)
	}
	r, err := render.New(t, opts.SquareSize, opts.Coordinates)
	if err != nil {
		return nil, wrapErr(err)
	}
	ov, err := overlay.Resolve(pos, meta)
	if err != nil {
		return nil, wrapErr(err)
	}
	img, err := r.Render(pos, ov, opts.Flipped)
	if err != nil {
		return nil, wrapErr(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
