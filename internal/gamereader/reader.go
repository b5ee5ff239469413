// Package gamereader adapts a standard-chess move list into the position
// sequence and per-ply metadata the animation pipeline consumes. Move
// legality and game state stay inside the rules library; variants whose
// movement rules differ from standard chess must arrive as pre-built
// positions instead.
package gamereader

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/Mego/chess-gif/pkg/board"
)

// FromPGN extracts the main-line movetext of a single game and replays it.
// Tag pairs are honored for Variant (standard family only); comments,
// variations, NAGs, and results are skipped.
func FromPGN(pgn string) ([]*board.Position, []*board.MoveMeta, error) {
	variant := board.Standard
	var movetext strings.Builder
	for _, line := range strings.Split(pgn, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			name, value, ok := parseTag(trimmed)
			if ok && name == "Variant" {
				v, err := board.ParseVariant(value)
				if err != nil {
					return nil, nil, err
				}
				variant = v
			}
			continue
		}
		movetext.WriteString(line)
		movetext.WriteByte('\n')
	}
	moves, err := tokenizeMovetext(movetext.String())
	if err != nil {
		return nil, nil, err
	}
	return FromMoves(moves, variant)
}

// FromMoves replays SAN or UCI moves from the standard starting position.
func FromMoves(moves []string, variant board.Variant) ([]*board.Position, []*board.MoveMeta, error) {
	switch variant {
	case board.Standard, board.KingOfTheHill, board.ThreeCheck:
	default:
		return nil, nil, fmt.Errorf("%w: variant %s needs pre-built positions, not a move list",
			board.ErrInvalid, variant)
	}

	game := nchess.NewGame()
	checksLeft := [2]int{3, 3}

	positions := []*board.Position{snapshot(game, variant, checksLeft)}
	metas := []*board.MoveMeta{nil}

	for _, raw := range moves {
		mv, san, err := pushMove(game, raw)
		if err != nil {
			return nil, nil, err
		}
		check := strings.ContainsAny(san, "+#")
		if check {
			// The side to move after the push is the one that got checked.
			checked := colorFrom(game.Position().Turn())
			if checksLeft[checked] > 0 {
				checksLeft[checked]--
			}
		}
		metas = append(metas, &board.MoveMeta{
			From:  squareFrom(mv.S1()),
			To:    squareFrom(mv.S2()),
			Check: check,
		})
		positions = append(positions, snapshot(game, variant, checksLeft))
	}
	return positions, metas, nil
}

// pushMove accepts UCI first, then SAN, mirroring how user input usually
// arrives.
func pushMove(game *nchess.Game, raw string) (*nchess.Move, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", fmt.Errorf("%w: empty move", board.ErrInvalid)
	}
	pos := game.Position()
	notationUCI := nchess.UCINotation{}
	if mv, derr := notationUCI.Decode(pos, strings.ToLower(raw)); derr == nil {
		if err := game.Move(mv, nil); err != nil {
			return nil, "", fmt.Errorf("%w: illegal move %q: %v", board.ErrInvalid, raw, err)
		}
		return mv, nchess.AlgebraicNotation{}.Encode(pos, mv), nil
	}
	if err := game.PushNotationMove(raw, nchess.AlgebraicNotation{}, nil); err != nil {
		return nil, "", fmt.Errorf("%w: illegal move %q: %v", board.ErrInvalid, raw, err)
	}
	mv := lastMove(game)
	if mv == nil {
		return nil, "", fmt.Errorf("%w: move %q not recorded", board.ErrInvalid, raw)
	}
	return mv, nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

func lastMove(game *nchess.Game) *nchess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

func snapshot(game *nchess.Game, variant board.Variant, checksLeft [2]int) *board.Position {
	pos := &board.Position{
		Variant: variant,
		Turn:    colorFrom(game.Position().Turn()),
	}
	if variant == board.ThreeCheck {
		pos.ChecksLeft = checksLeft
	}
	for sq, piece := range game.Position().Board().SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		pos.Grid[squareFrom(sq)] = board.Piece{
			Kind:  kindFrom(piece.Type()),
			Color: colorFrom(piece.Color()),
		}
	}
	return pos
}

func squareFrom(sq nchess.Square) board.Square {
	return board.NewSquare(int(sq.File()), int(sq.Rank()))
}

func colorFrom(c nchess.Color) board.Color {
	if c == nchess.White {
		return board.White
	}
	return board.Black
}

func kindFrom(t nchess.PieceType) board.PieceKind {
	switch t {
	case nchess.King:
		return board.King
	case nchess.Queen:
		return board.Queen
	case nchess.Rook:
		return board.Rook
	case nchess.Bishop:
		return board.Bishop
	case nchess.Knight:
		return board.Knight
	case nchess.Pawn:
		return board.Pawn
	}
	return board.NoPieceKind
}

func parseTag(line string) (name, value string, ok bool) {
	line = strings.TrimPrefix(line, "[")
	line = strings.TrimSuffix(line, "]")
	i := strings.IndexByte(line, '"')
	j := strings.LastIndexByte(line, '"')
	if i < 0 || j <= i {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), line[i+1 : j], true
}

// tokenizeMovetext strips comments, variations, NAGs, move numbers, and game
// results, leaving bare move tokens.
func tokenizeMovetext(s string) ([]string, error) {
	var moves []string
	depth := 0
	inComment := false
	for _, field := range strings.Fields(s) {
		for field != "" {
			switch {
			case inComment:
				if i := strings.IndexByte(field, '}'); i >= 0 {
					inComment = false
					field = field[i+1:]
				} else {
					field = ""
				}
			case strings.HasPrefix(field, "{"):
				inComment = true
				field = field[1:]
			case strings.HasPrefix(field, "("):
				depth++
				field = field[1:]
			case strings.HasPrefix(field, ")"):
				if depth == 0 {
					return nil, fmt.Errorf("%w: unbalanced variation", board.ErrInvalid)
				}
				depth--
				field = field[1:]
			case depth > 0:
				if i := strings.IndexAny(field, "()"); i >= 0 {
					field = field[i:]
				} else {
					field = ""
				}
			default:
				token := field
				if i := strings.IndexAny(field, "(){"); i >= 0 {
					token, field = field[:i], field[i:]
				} else {
					field = ""
				}
				token = strings.TrimSpace(token)
				if token == "" || isResultToken(token) || strings.HasPrefix(token, "$") {
					continue
				}
				// "12." or "12..." prefixes, possibly glued to the move.
				// "0-0" style castling must survive, so digits are only
				// stripped ahead of a dot.
				if i := strings.IndexByte(token, '.'); i >= 0 && allDigits(token[:i]) {
					token = strings.TrimLeft(token[i:], ".")
				} else if allDigits(token) {
					continue
				}
				if token != "" {
					moves = append(moves, token)
				}
			}
		}
	}
	if inComment || depth != 0 {
		return nil, fmt.Errorf("%w: unterminated comment or variation", board.ErrInvalid)
	}
	return moves, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isResultToken(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}
