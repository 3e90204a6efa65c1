package game

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// MoveStatus classifies the result of an ApplyMove call.
type MoveStatus string

const (
	MoveOK        MoveStatus = "ok"
	MoveMalformed MoveStatus = "malformed"
	MoveIllegal   MoveStatus = "illegal"
	MoveRejected  MoveStatus = "rejected"
)

// Outcome is the derived classification of the current position. It is
// recomputed from the board after every move, never stored.
type Outcome string

const (
	OutcomeOngoing              Outcome = "ongoing"
	OutcomeCheck                Outcome = "check"
	OutcomeCheckmate            Outcome = "checkmate"
	OutcomeStalemate            Outcome = "stalemate"
	OutcomeInsufficientMaterial Outcome = "insufficient_material"
	OutcomeDraw                 Outcome = "draw"
)

// Terminal reports whether no further moves can be applied.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeCheckmate, OutcomeStalemate, OutcomeInsufficientMaterial, OutcomeDraw:
		return true
	default:
		return false
	}
}

// MoveResult is the explicit result of an ApplyMove call. Malformed input and
// illegal moves are reported here as values, never as errors: the caller (a
// language model or a human) is expected to read Text and retry.
type MoveResult struct {
	Status  MoveStatus
	Text    string
	UCI     string
	SAN     string
	FEN     string
	Outcome Outcome
}

// Applied reports whether the board advanced by one ply.
func (r MoveResult) Applied() bool { return r.Status == MoveOK }

// Controller owns a single chess game and applies proposed moves against it.
// The board is the single source of truth; everything the controller returns
// is derived from it. Not safe for concurrent use: callers serialize access
// (one move request in flight per game).
type Controller struct {
	game    *nchess.Game
	lastSAN string
}

func NewController() *Controller {
	return &Controller{game: nchess.NewGame()}
}

// LegalMoveList returns the legal moves of the current position in UCI
// notation, preserving the rules engine's enumeration order. A terminal
// position yields an empty slice, not an error.
func (c *Controller) LegalMoveList() []string {
	pos := c.game.Position()
	moves := c.game.ValidMoves()
	notation := nchess.UCINotation{}
	out := make([]string, 0, len(moves))
	for i := range moves {
		out = append(out, strings.ToLower(notation.Encode(pos, &moves[i])))
	}
	return out
}

// LegalMoves renders the legal-move set as a single descriptive string, the
// form the playing agents consume.
func (c *Controller) LegalMoves() string {
	return "Available moves are: " + strings.Join(c.LegalMoveList(), ",")
}

// ApplyMove advances the board by one ply if input parses as UCI and is a
// member of the current legal-move set. On success the returned Text carries
// the moved piece's name and symbol, the origin and destination squares, and
// an outcome suffix chosen by precedence checkmate > stalemate > insufficient
// material > check.
func (c *Controller) ApplyMove(input string) MoveResult {
	moveText := strings.ToLower(strings.TrimSpace(input))

	if c.Outcome().Terminal() {
		return MoveResult{
			Status:  MoveRejected,
			Text:    "The game is already over. " + c.outcomeLine(),
			FEN:     c.game.FEN(),
			Outcome: c.Outcome(),
		}
	}

	pos := c.game.Position()
	notation := nchess.UCINotation{}
	move, err := notation.Decode(pos, moveText)
	if err != nil {
		return MoveResult{
			Status:  MoveMalformed,
			Text:    fmt.Sprintf("Invalid move format: %s. Please use UCI format (e.g., 'e2e4').", input),
			FEN:     c.game.FEN(),
			Outcome: c.Outcome(),
		}
	}

	uci := strings.ToLower(notation.Encode(pos, move))
	if !c.isLegal(uci) {
		return MoveResult{
			Status:  MoveIllegal,
			Text:    fmt.Sprintf("Invalid move: %s. Please call available_moves to see valid moves.", moveText),
			FEN:     c.game.FEN(),
			Outcome: c.Outcome(),
		}
	}

	san := nchess.AlgebraicNotation{}.Encode(pos, move)
	mover := pos.Turn()
	if err := c.game.Move(move, nil); err != nil {
		// The membership check above should make this unreachable; report it
		// as an illegal move rather than failing the caller.
		return MoveResult{
			Status:  MoveIllegal,
			Text:    fmt.Sprintf("Invalid move: %s. Please call available_moves to see valid moves.", moveText),
			FEN:     c.game.FEN(),
			Outcome: c.Outcome(),
		}
	}
	c.lastSAN = san

	desc := c.describeMove(move, mover)
	if suffix := c.outcomeSuffix(mover); suffix != "" {
		desc += "\n" + suffix
	}

	return MoveResult{
		Status:  MoveOK,
		Text:    desc,
		UCI:     uci,
		SAN:     san,
		FEN:     c.game.FEN(),
		Outcome: c.Outcome(),
	}
}

// Reset restores the standard starting position. Idempotent.
func (c *Controller) Reset() {
	c.game = nchess.NewGame()
	c.lastSAN = ""
}

// Outcome classifies the current position. Check is derived from the last
// applied move's SAN; the terminal states come from the rules engine.
func (c *Controller) Outcome() Outcome {
	switch c.game.Outcome() {
	case nchess.WhiteWon, nchess.BlackWon:
		return OutcomeCheckmate
	case nchess.Draw:
		switch c.game.Method() {
		case nchess.Stalemate:
			return OutcomeStalemate
		case nchess.InsufficientMaterial:
			return OutcomeInsufficientMaterial
		default:
			return OutcomeDraw
		}
	}
	if strings.HasSuffix(c.lastSAN, "+") {
		return OutcomeCheck
	}
	return OutcomeOngoing
}

// FEN returns the current position in Forsyth-Edwards notation.
func (c *Controller) FEN() string { return c.game.FEN() }

// PGN returns the game record so far.
func (c *Controller) PGN() string { return c.game.String() }

// MoveCount returns the number of applied plies.
func (c *Controller) MoveCount() int { return len(c.game.Moves()) }

// Turn returns "white" or "black" for the side to move.
func (c *Controller) Turn() string {
	if c.game.Position().Turn() == nchess.White {
		return "white"
	}
	return "black"
}

// Position exposes the current position read-only, for rendering.
func (c *Controller) Position() *nchess.Position { return c.game.Position() }

// LastMove returns the most recently applied move, or nil on a fresh board.
func (c *Controller) LastMove() *nchess.Move {
	moves := c.game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

func (c *Controller) isLegal(uci string) bool {
	for _, legal := range c.LegalMoveList() {
		if legal == uci {
			return true
		}
	}
	return false
}

func (c *Controller) describeMove(move *nchess.Move, mover nchess.Color) string {
	// Look the piece up at the destination square after the move so that
	// promotions describe the promoted piece, as the board now shows it.
	piece := c.game.Position().Board().Piece(move.S2())
	name := pieceName(piece.Type())
	if mover == nchess.White && name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("Moved %s (%s) from %s to %s.",
		name, pieceSymbol(piece), move.S1().String(), move.S2().String())
}

func (c *Controller) outcomeSuffix(mover nchess.Color) string {
	switch c.Outcome() {
	case OutcomeCheckmate:
		winner := "White"
		if mover == nchess.Black {
			winner = "Black"
		}
		return fmt.Sprintf("Checkmate! %s wins!", winner)
	case OutcomeStalemate:
		return "Game ended in stalemate!"
	case OutcomeInsufficientMaterial:
		return "Game ended - insufficient material to checkmate!"
	case OutcomeDraw:
		return "Game ended in a draw!"
	case OutcomeCheck:
		return "Check!"
	default:
		return ""
	}
}

func (c *Controller) outcomeLine() string {
	switch c.Outcome() {
	case OutcomeCheckmate:
		if c.game.Outcome() == nchess.WhiteWon {
			return "Checkmate! White wins!"
		}
		return "Checkmate! Black wins!"
	case OutcomeStalemate:
		return "Game ended in stalemate!"
	case OutcomeInsufficientMaterial:
		return "Game ended - insufficient material to checkmate!"
	case OutcomeDraw:
		return "Game ended in a draw!"
	default:
		return ""
	}
}
