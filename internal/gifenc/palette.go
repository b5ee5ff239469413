// Package gifenc serializes rendered frames into a GIF89a byte stream:
// global palette construction, LZW compression, and the container layout.
package gifenc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
)

// ErrOverflow marks palette or code-table limits exceeded beyond what the
// format allows. It is surfaced distinctly from invalid input so a theme or
// configuration problem can be told apart from a data problem.
var ErrOverflow = errors.New("gifenc: encoding overflow")

const maxPaletteSize = 256

// Palette is the global color table shared by every frame of one job, plus
// the mapping from each source color to its index. Immutable once built.
type Palette struct {
	// Colors are the palette entries in index order.
	Colors []color.RGBA
	// TransparentIndex is the reserved transparent slot, or -1.
	TransparentIndex int

	lookup map[uint32]uint8
}

func packRGB(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpackRGB(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// BuildPalette collects the distinct colors across all frames into one global
// palette. Below the table limit the mapping is exact (lossless); above it,
// the most frequent colors are kept (ties broken by first appearance) and the
// rest map to their nearest kept color by L1 distance. reserveTransparent
// keeps one slot free for the differ's unchanged-pixel index.
func BuildPalette(frames []*image.RGBA, reserveTransparent bool) (*Palette, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrOverflow)
	}

	type colorStat struct {
		rgb   uint32
		count int
		seen  int
	}
	stats := make(map[uint32]*colorStat)
	order := make([]uint32, 0, 64)
	for _, f := range frames {
		pix := f.Pix
		for i := 0; i < len(pix); i += 4 {
			rgb := uint32(pix[i])<<16 | uint32(pix[i+1])<<8 | uint32(pix[i+2])
			st, ok := stats[rgb]
			if !ok {
				st = &colorStat{rgb: rgb, seen: len(order)}
				stats[rgb] = st
				order = append(order, rgb)
			}
			st.count++
		}
	}

	capacity := maxPaletteSize
	if reserveTransparent {
		capacity--
	}

	p := &Palette{TransparentIndex: -1, lookup: make(map[uint32]uint8, len(order))}

	if len(order) <= capacity {
		for _, rgb := range order {
			p.lookup[rgb] = uint8(len(p.Colors))
			p.Colors = append(p.Colors, unpackRGB(rgb))
		}
	} else {
		ranked := make([]*colorStat, 0, len(order))
		for _, rgb := range order {
			ranked = append(ranked, stats[rgb])
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].seen < ranked[j].seen
		})
		kept := ranked[:capacity]
		// Palette order stays first-seen so the table is stable under
		// frequency jitter between otherwise identical jobs.
		sort.Slice(kept, func(i, j int) bool { return kept[i].seen < kept[j].seen })
		for _, st := range kept {
			p.lookup[st.rgb] = uint8(len(p.Colors))
			p.Colors = append(p.Colors, unpackRGB(st.rgb))
		}
		for _, st := range ranked[capacity:] {
			p.lookup[st.rgb] = p.nearest(unpackRGB(st.rgb))
		}
	}

	if reserveTransparent {
		p.TransparentIndex = len(p.Colors)
		p.Colors = append(p.Colors, color.RGBA{A: 0xff})
	}
	return p, nil
}

// nearest picks the palette index with the smallest channel-wise absolute
// difference sum, lowest index winning ties.
func (p *Palette) nearest(c color.RGBA) uint8 {
	best, bestDist := 0, int(^uint(0)>>1)
	for i, pc := range p.Colors {
		d := absDiff(pc.R, c.R) + absDiff(pc.G, c.G) + absDiff(pc.B, c.B)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Index resolves one source color.
func (p *Palette) Index(c color.RGBA) (uint8, bool) {
	idx, ok := p.lookup[packRGB(c)]
	return idx, ok
}

// IndexRegion maps the pixels of img inside rect to palette indices, row by
// row. When prev is non-nil, pixels identical to prev collapse to the
// transparent slot so the LZW input stays highly repetitive.
func (p *Palette) IndexRegion(img *image.RGBA, rect image.Rectangle, prev *image.RGBA) ([]byte, error) {
	if prev != nil && p.TransparentIndex < 0 {
		return nil, fmt.Errorf("%w: delta frame without a transparent slot", ErrOverflow)
	}
	out := make([]byte, 0, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if prev != nil && c == prev.RGBAAt(x, y) {
				out = append(out, uint8(p.TransparentIndex))
				continue
			}
			idx, ok := p.lookup[packRGB(c)]
			if !ok {
				return nil, fmt.Errorf("%w: color %v not in palette", ErrOverflow, c)
			}
			out = append(out, idx)
		}
	}
	return out, nil
}
