// Package overlay derives the visual annotations for one frame from a
// position and the move that produced it. It is pure: pixel concerns stay in
// the renderer.
package overlay

import (
	"fmt"
	"sort"

	"github.com/Mego/chess-gif/pkg/board"
)

// Kind is a square annotation.
type Kind uint8

const (
	KindMoveFrom Kind = iota
	KindMoveTo
	KindCheck
	KindExploded
)

func (k Kind) String() string {
	switch k {
	case KindMoveFrom:
		return "move-from"
	case KindMoveTo:
		return "move-to"
	case KindCheck:
		return "check"
	case KindExploded:
		return "exploded"
	}
	return "unknown"
}

// Annotation pairs a square with one annotation kind. Multiple annotations
// may share a square.
type Annotation struct {
	Square board.Square
	Kind   Kind
}

// Overlay is the full annotation set for one frame. Square annotations are
// sorted by (square, kind) so identical inputs always produce identical
// overlays.
type Overlay struct {
	Squares []Annotation

	// Pockets is set for crazyhouse frames, indexed by board.Color.
	Pockets *[2]board.Pocket
	// ChecksLeft is set for three-check frames, indexed by board.Color.
	ChecksLeft *[2]int
}

// HasPanel reports whether the frame needs a side panel.
func (o *Overlay) HasPanel() bool { return o.Pockets != nil || o.ChecksLeft != nil }

// Resolve computes the overlay for pos, given the move metadata that produced
// it (nil for an initial position). Annotations compose additively; no
// variant suppresses the base last-move and check highlighting.
func Resolve(pos *board.Position, meta *board.MoveMeta) (Overlay, error) {
	if pos == nil {
		return Overlay{}, fmt.Errorf("%w: nil position", board.ErrInvalid)
	}
	if err := meta.Validate(); err != nil {
		return Overlay{}, err
	}

	var ov Overlay
	if meta != nil {
		if !meta.IsDrop {
			ov.Squares = append(ov.Squares, Annotation{meta.From, KindMoveFrom})
		}
		ov.Squares = append(ov.Squares, Annotation{meta.To, KindMoveTo})
		if meta.Check {
			// The side to move in the resulting position is the one in check.
			if ksq, ok := pos.KingSquare(pos.Turn); ok {
				ov.Squares = append(ov.Squares, Annotation{ksq, KindCheck})
			}
		}
	}

	switch pos.Variant {
	case board.Atomic:
		if meta != nil {
			for _, sq := range meta.Exploded {
				ov.Squares = append(ov.Squares, Annotation{sq, KindExploded})
			}
		}
	case board.Crazyhouse:
		p := pos.Pockets
		ov.Pockets = &p
	case board.ThreeCheck:
		c := pos.ChecksLeft
		ov.ChecksLeft = &c
	}

	sort.Slice(ov.Squares, func(i, j int) bool {
		a, b := ov.Squares[i], ov.Squares[j]
		if a.Square != b.Square {
			return a.Square < b.Square
		}
		return a.Kind < b.Kind
	})
	return ov, nil
}
