// Package gamedto holds the wire types the HTTP API speaks.
package gamedto

import "time"

type MoveView struct {
	Ply         int    `json:"ply"`
	Color       string `json:"color"`
	UCI         string `json:"uci"`
	SAN         string `json:"san"`
	FEN         string `json:"fen"`
	Description string `json:"description"`
}

type SessionView struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Outcome   string     `json:"outcome"`
	Summary   string     `json:"summary,omitempty"`
	Error     string     `json:"error,omitempty"`
	Moves     []MoveView `json:"moves"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

type MoveResponse struct {
	Status  string       `json:"status"`
	Text    string       `json:"text"`
	UCI     string       `json:"uci,omitempty"`
	SAN     string       `json:"san,omitempty"`
	FEN     string       `json:"fen,omitempty"`
	Outcome string       `json:"outcome"`
	Session *SessionView `json:"session,omitempty"`
}

type LegalMovesResponse struct {
	Text  string   `json:"text"`
	Moves []string `json:"moves"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
