package anim

import (
	"bytes"
	"image"
)

// Disposal values as encoded in a GIF graphic control extension.
const (
	DisposalNone = 0x01
)

// Region is the minimal canvas area that must be rewritten to advance one
// frame, plus its disposal mode. An Empty rect means the frames are
// identical.
type Region struct {
	Rect     image.Rectangle
	Disposal byte
}

// Diff finds the minimal bounding rectangle of pixels that differ between
// prev and cur. A nil prev is the blank baseline: the whole canvas changes.
// Chess frames draw over a static backdrop, so disposal is always
// "leave in place".
//
// The scan is a straight byte comparison over rows; rows are compared with
// bytes.Equal first so unchanged board areas are skipped at memcmp speed.
func Diff(prev, cur *image.RGBA) Region {
	if prev == nil {
		return Region{Rect: cur.Bounds(), Disposal: DisposalNone}
	}

	b := cur.Bounds()
	minY, maxY := -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if !rowsEqual(prev, cur, y) {
			if minY < 0 {
				minY = y
			}
			maxY = y
		}
	}
	if minY < 0 {
		return Region{Disposal: DisposalNone}
	}

	minX, maxX := b.Max.X, b.Min.X-1
	for y := minY; y <= maxY; y++ {
		lo, hi, ok := rowDiffSpan(prev, cur, y, minX, maxX)
		if !ok {
			continue
		}
		if lo < minX {
			minX = lo
		}
		if hi > maxX {
			maxX = hi
		}
	}
	return Region{
		Rect:     image.Rect(minX, minY, maxX+1, maxY+1),
		Disposal: DisposalNone,
	}
}

func rowsEqual(a, b *image.RGBA, y int) bool {
	bounds := b.Bounds()
	ao := a.PixOffset(bounds.Min.X, y)
	bo := b.PixOffset(bounds.Min.X, y)
	n := bounds.Dx() * 4
	return bytes.Equal(a.Pix[ao:ao+n], b.Pix[bo:bo+n])
}

// rowDiffSpan returns the first and last differing x in row y. Scanning stops
// early at the current global bounds: pixels inside them cannot widen the
// rectangle.
func rowDiffSpan(a, b *image.RGBA, y, curMinX, curMaxX int) (lo, hi int, ok bool) {
	bounds := b.Bounds()
	lo, hi = -1, -1
	for x := bounds.Min.X; x < bounds.Max.X && x < curMinX; x++ {
		if !pixEqual(a, b, x, y) {
			lo = x
			break
		}
	}
	for x := bounds.Max.X - 1; x > curMaxX; x-- {
		if !pixEqual(a, b, x, y) {
			hi = x
			break
		}
	}
	if lo < 0 && hi < 0 {
		return 0, 0, false
	}
	if lo < 0 {
		lo = hi
	}
	if hi < 0 {
		hi = lo
	}
	return lo, hi, true
}

func pixEqual(a, b *image.RGBA, x, y int) bool {
	ao := a.PixOffset(x, y)
	bo := b.PixOffset(x, y)
	return bytes.Equal(a.Pix[ao:ao+4], b.Pix[bo:bo+4])
}
