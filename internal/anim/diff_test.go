package anim

import (
	"image"
	"image/color"
	"testing"
)

func fillRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDiffNilBaseline(t *testing.T) {
	cur := fillRGBA(10, 8, color.RGBA{A: 255})
	reg := Diff(nil, cur)
	if reg.Rect != cur.Bounds() {
		t.Fatalf("baseline region = %v, want full bounds %v", reg.Rect, cur.Bounds())
	}
	if reg.Disposal != DisposalNone {
		t.Fatalf("disposal = %d, want %d", reg.Disposal, DisposalNone)
	}
}

func TestDiffIdenticalFrames(t *testing.T) {
	a := fillRGBA(12, 12, color.RGBA{1, 2, 3, 255})
	b := fillRGBA(12, 12, color.RGBA{1, 2, 3, 255})
	reg := Diff(a, b)
	if !reg.Rect.Empty() {
		t.Fatalf("identical frames should yield an empty region, got %v", reg.Rect)
	}
}

func TestDiffSinglePixel(t *testing.T) {
	a := fillRGBA(16, 16, color.RGBA{A: 255})
	b := fillRGBA(16, 16, color.RGBA{A: 255})
	b.SetRGBA(5, 9, color.RGBA{255, 0, 0, 255})
	reg := Diff(a, b)
	if reg.Rect != image.Rect(5, 9, 6, 10) {
		t.Fatalf("region = %v, want (5,9)-(6,10)", reg.Rect)
	}
}

func TestDiffBoundingRectCoversAllChanges(t *testing.T) {
	a := fillRGBA(32, 32, color.RGBA{A: 255})
	b := fillRGBA(32, 32, color.RGBA{A: 255})
	changed := []image.Point{{3, 4}, {20, 4}, {10, 25}}
	for _, p := range changed {
		b.SetRGBA(p.X, p.Y, color.RGBA{0, 255, 0, 255})
	}
	reg := Diff(a, b)
	if reg.Rect != image.Rect(3, 4, 21, 26) {
		t.Fatalf("region = %v, want (3,4)-(21,26)", reg.Rect)
	}
	for _, p := range changed {
		if !p.In(reg.Rect) {
			t.Fatalf("changed pixel %v outside region %v", p, reg.Rect)
		}
	}
}

func TestDiffInteriorChangeDoesNotWidenRect(t *testing.T) {
	a := fillRGBA(32, 8, color.RGBA{A: 255})
	b := fillRGBA(32, 8, color.RGBA{A: 255})
	// Wide change on row 1 fixes the x span; row 3's change sits inside it.
	b.SetRGBA(4, 1, color.RGBA{1, 1, 1, 255})
	b.SetRGBA(28, 1, color.RGBA{1, 1, 1, 255})
	b.SetRGBA(16, 3, color.RGBA{1, 1, 1, 255})
	reg := Diff(a, b)
	if reg.Rect != image.Rect(4, 1, 29, 4) {
		t.Fatalf("region = %v, want (4,1)-(29,4)", reg.Rect)
	}
}
