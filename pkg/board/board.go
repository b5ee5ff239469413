package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks malformed input from the rules collaborator. It is fatal
// to the render job that received it.
var ErrInvalid = errors.New("board: invalid input")

// Color identifies a chess side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceKind is a piece role. The zero value means an empty square.
type PieceKind uint8

const (
	NoPieceKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{0, 'p', 'n', 'b', 'r', 'q', 'k'}

func (k PieceKind) String() string {
	if k == NoPieceKind || int(k) >= len(kindLetters) {
		return "-"
	}
	return string(kindLetters[k])
}

// Piece is an optional (kind, color) value. The zero value is an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// NoPiece is the empty square value.
var NoPiece = Piece{}

func (p Piece) Empty() bool { return p.Kind == NoPieceKind }

// Letter returns the FEN letter for the piece: uppercase white, lowercase black.
func (p Piece) Letter() byte {
	l := kindLetters[p.Kind]
	if p.Color == White {
		return l &^ 0x20
	}
	return l
}

func pieceFromLetter(l byte) (Piece, bool) {
	c := White
	if l >= 'a' {
		c = Black
	}
	switch l | 0x20 {
	case 'p':
		return Piece{Pawn, c}, true
	case 'n':
		return Piece{Knight, c}, true
	case 'b':
		return Piece{Bishop, c}, true
	case 'r':
		return Piece{Rook, c}, true
	case 'q':
		return Piece{Queen, c}, true
	case 'k':
		return Piece{King, c}, true
	}
	return NoPiece, false
}

// Square indexes the 8x8 grid, a1=0 .. h8=63.
type Square uint8

// NewSquare builds a square from zero-based file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether the square is on the board.
func (s Square) Valid() bool { return s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses coordinates like "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("%w: square %q", ErrInvalid, s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Variant tags the rule set a position belongs to. Only the visual
// consequences matter here; move legality is owned by the rules collaborator.
type Variant uint8

const (
	Standard Variant = iota
	Chess960
	KingOfTheHill
	Horde
	RacingKings
	Antichess
	Atomic
	ThreeCheck
	Crazyhouse
)

var variantNames = map[Variant]string{
	Standard:      "standard",
	Chess960:      "chess960",
	KingOfTheHill: "kingOfTheHill",
	Horde:         "horde",
	RacingKings:   "racingKings",
	Antichess:     "antichess",
	Atomic:        "atomic",
	ThreeCheck:    "threeCheck",
	Crazyhouse:    "crazyhouse",
}

func (v Variant) String() string {
	if n, ok := variantNames[v]; ok {
		return n
	}
	return "standard"
}

// ParseVariant accepts the names used by the common PGN Variant tags.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "chess", "from position":
		return Standard, nil
	case "chess960", "fischerandom", "fischerrandom":
		return Chess960, nil
	case "kingofthehill", "king of the hill":
		return KingOfTheHill, nil
	case "horde":
		return Horde, nil
	case "racingkings", "racing kings":
		return RacingKings, nil
	case "antichess", "giveaway", "suicide":
		return Antichess, nil
	case "atomic":
		return Atomic, nil
	case "threecheck", "three-check", "3check", "3-check":
		return ThreeCheck, nil
	case "crazyhouse":
		return Crazyhouse, nil
	}
	return Standard, fmt.Errorf("%w: unknown variant %q", ErrInvalid, s)
}

// Pocket holds captured pieces available for dropping, indexed by PieceKind.
type Pocket [King + 1]int

func (p Pocket) Count(k PieceKind) int {
	if int(k) >= len(p) {
		return 0
	}
	return p[k]
}

// Total returns the number of held pieces.
func (p Pocket) Total() int {
	n := 0
	for _, c := range p {
		n += c
	}
	return n
}

// Position is one board state as produced by the rules collaborator.
// It is immutable once constructed.
type Position struct {
	Variant Variant
	Grid    [64]Piece
	Turn    Color

	// Pockets holds the crazyhouse reserves, indexed by Color.
	Pockets [2]Pocket
	// ChecksLeft is the three-check win distance per side, indexed by Color.
	ChecksLeft [2]int
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.Grid[sq]
}

// KingSquare locates the king of the given color.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for sq := Square(0); sq < 64; sq++ {
		if pc := p.Grid[sq]; pc.Kind == King && pc.Color == c {
			return sq, true
		}
	}
	return 0, false
}

// MoveMeta is the per-ply metadata attached to the position a move produced.
type MoveMeta struct {
	From Square
	To   Square
	// IsDrop marks a crazyhouse drop; From is meaningless then.
	IsDrop bool
	// Check reports that the side to move in the resulting position is in check.
	Check bool
	// Exploded lists the extra squares cleared by an atomic explosion.
	Exploded []Square
}

// Validate rejects metadata referencing squares outside the board.
func (m *MoveMeta) Validate() error {
	if m == nil {
		return nil
	}
	if !m.To.Valid() {
		return fmt.Errorf("%w: move destination %d off board", ErrInvalid, m.To)
	}
	if !m.IsDrop && !m.From.Valid() {
		return fmt.Errorf("%w: move origin %d off board", ErrInvalid, m.From)
	}
	for _, sq := range m.Exploded {
		if !sq.Valid() {
			return fmt.Errorf("%w: exploded square %d off board", ErrInvalid, sq)
		}
	}
	return nil
}
