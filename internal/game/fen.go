package game

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

// BoardFromFEN rebuilds a board from a stored FEN string, for rendering
// historical positions without replaying the whole game.
func BoardFromFEN(fen string) (*nchess.Board, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	g := nchess.NewGame(opt)
	return g.Position().Board(), nil
}
