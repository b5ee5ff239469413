package board

import (
	"fmt"
	"strings"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a Position from a FEN string for the given variant. Only the
// fields the renderer consumes are interpreted: the board (with an optional
// crazyhouse pocket suffix in brackets), the side to move, and a three-check
// remaining-checks field of the form "3+3" when present. Everything else is
// passed over; legality is not checked here.
func ParseFEN(fen string, variant Variant) (*Position, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty FEN", ErrInvalid)
	}

	pos := &Position{Variant: variant, Turn: White}
	if variant == ThreeCheck {
		pos.ChecksLeft = [2]int{3, 3}
	}

	boardField := fields[0]
	if i := strings.IndexByte(boardField, '['); i >= 0 {
		if !strings.HasSuffix(boardField, "]") {
			return nil, fmt.Errorf("%w: unterminated pocket in %q", ErrInvalid, boardField)
		}
		if err := parsePocket(boardField[i+1:len(boardField)-1], pos); err != nil {
			return nil, err
		}
		boardField = boardField[:i]
	}
	if err := parseBoard(boardField, pos); err != nil {
		return nil, err
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			pos.Turn = White
		case "b":
			pos.Turn = Black
		default:
			return nil, fmt.Errorf("%w: side to move %q", ErrInvalid, fields[1])
		}
	}

	for _, f := range fields[2:] {
		if w, b, ok := parseChecksField(f); ok {
			pos.ChecksLeft = [2]int{w, b}
			break
		}
	}
	return pos, nil
}

func parseBoard(field string, pos *Position) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: board has %d ranks", ErrInvalid, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			// A crazyhouse FEN may mark promoted pieces with a trailing '~'.
			if ch == '~' {
				continue
			}
			piece, ok := pieceFromLetter(ch)
			if !ok || file > 7 {
				return fmt.Errorf("%w: rank %q", ErrInvalid, row)
			}
			pos.Grid[NewSquare(file, rank)] = piece
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %q covers %d files", ErrInvalid, row, file)
		}
	}
	return nil
}

func parsePocket(letters string, pos *Position) error {
	for i := 0; i < len(letters); i++ {
		piece, ok := pieceFromLetter(letters[i])
		if !ok || piece.Kind == King {
			return fmt.Errorf("%w: pocket piece %q", ErrInvalid, letters[i])
		}
		pos.Pockets[piece.Color][piece.Kind]++
	}
	return nil
}

// parseChecksField reads lichess-style "3+3" (checks remaining to win).
func parseChecksField(f string) (w, b int, ok bool) {
	parts := strings.Split(f, "+")
	if len(parts) != 2 || len(parts[0]) != 1 || len(parts[1]) != 1 {
		return 0, 0, false
	}
	if parts[0][0] < '0' || parts[0][0] > '3' || parts[1][0] < '0' || parts[1][0] > '3' {
		return 0, 0, false
	}
	return int(parts[0][0] - '0'), int(parts[1][0] - '0'), true
}

// FEN renders the board field plus side to move, mainly for tests and logs.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Grid[NewSquare(file, rank)]
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if p.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	return sb.String()
}
