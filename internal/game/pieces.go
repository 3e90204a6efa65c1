package game

import nchess "github.com/corentings/chess/v2"

var pieceNames = map[nchess.PieceType]string{
	nchess.King:   "king",
	nchess.Queen:  "queen",
	nchess.Rook:   "rook",
	nchess.Bishop: "bishop",
	nchess.Knight: "knight",
	nchess.Pawn:   "pawn",
}

var whiteSymbols = map[nchess.PieceType]string{
	nchess.King:   "♔",
	nchess.Queen:  "♕",
	nchess.Rook:   "♖",
	nchess.Bishop: "♗",
	nchess.Knight: "♘",
	nchess.Pawn:   "♙",
}

var blackSymbols = map[nchess.PieceType]string{
	nchess.King:   "♚",
	nchess.Queen:  "♛",
	nchess.Rook:   "♜",
	nchess.Bishop: "♝",
	nchess.Knight: "♞",
	nchess.Pawn:   "♟",
}

func pieceName(pt nchess.PieceType) string {
	return pieceNames[pt]
}

func pieceSymbol(piece nchess.Piece) string {
	if piece == nchess.NoPiece {
		return ""
	}
	if piece.Color() == nchess.White {
		return whiteSymbols[piece.Type()]
	}
	return blackSymbols[piece.Type()]
}
