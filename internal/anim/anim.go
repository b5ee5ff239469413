// Package anim turns an ordered position sequence into timed frames and
// computes the minimal per-frame update regions consumed by the encoder.
package anim

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/Mego/chess-gif/internal/overlay"
	"github.com/Mego/chess-gif/internal/render"
	"github.com/Mego/chess-gif/pkg/board"
)

// Default timing, in hundredths of a second.
const (
	DefaultDelayCS      = 62
	DefaultFinalDelayCS = 500
)

// LoopInfinite is the loop-count policy for animations.
const LoopInfinite = 0

// Frame is one rendered animation step. It is never mutated after Compose
// returns it.
type Frame struct {
	Image   *image.RGBA
	DelayCS int
}

// Composer drives the per-ply overlay resolution and rendering.
type Composer struct {
	renderer *render.Renderer

	// DelayCS is the per-frame display duration; FinalDelayCS replaces it on
	// the last frame so the end position holds.
	DelayCS      int
	FinalDelayCS int
	// Workers caps parallel frame rendering. Zero means GOMAXPROCS.
	Workers int
}

// NewComposer uses the default lichess-style timing.
func NewComposer(r *render.Renderer) *Composer {
	return &Composer{renderer: r, DelayCS: DefaultDelayCS, FinalDelayCS: DefaultFinalDelayCS}
}

// Compose renders every position in ply order. metas[i] describes the move
// that produced positions[i] (nil for an initial position); metas may be nil
// when no move metadata exists at all. A single-position input yields one
// long-hold frame. Frames are rendered in parallel but returned in ply order.
func (c *Composer) Compose(positions []*board.Position, metas []*board.MoveMeta, flipped bool) ([]Frame, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no positions", board.ErrInvalid)
	}
	if metas != nil && len(metas) != len(positions) {
		return nil, fmt.Errorf("%w: %d positions but %d move metadata entries",
			board.ErrInvalid, len(positions), len(metas))
	}

	frames := make([]Frame, len(positions))
	errs := make([]error, len(positions))

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range positions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			var meta *board.MoveMeta
			if metas != nil {
				meta = metas[i]
			}
			ov, err := overlay.Resolve(positions[i], meta)
			if err != nil {
				errs[i] = err
				return
			}
			img, err := c.renderer.Render(positions[i], ov, flipped)
			if err != nil {
				errs[i] = err
				return
			}
			frames[i] = Frame{Image: img, DelayCS: c.delayFor(i, len(positions))}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return frames, nil
}

func (c *Composer) delayFor(i, total int) int {
	if i == total-1 {
		return c.FinalDelayCS
	}
	return c.DelayCS
}
