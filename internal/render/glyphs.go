package render

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

const (
	whitePieceFill   = "#fafafa"
	whitePieceStroke = "#2f2f2f"
	blackPieceFill   = "#2b2b2b"
	blackPieceStroke = "#0a0a0a"
)

// pieceGlyph writes a vector silhouette for the piece into the 48x48 box
// anchored at (x, y). The shapes are self-contained so the document needs
// no defs or use elements, which keeps it inside what the rasterizer
// understands.
func pieceGlyph(sb *strings.Builder, piece nchess.Piece, x, y int) {
	fill, stroke := whitePieceFill, whitePieceStroke
	if piece.Color() == nchess.Black {
		fill, stroke = blackPieceFill, blackPieceStroke
	}

	fmt.Fprintf(sb, `<g transform="translate(%d,%d)" fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`,
		x, y, fill, stroke)

	switch piece.Type() {
	case nchess.Pawn:
		sb.WriteString(`<circle cx="24" cy="15" r="6"/>`)
		sb.WriteString(`<polygon points="19,21 29,21 32,37 16,37"/>`)
		sb.WriteString(`<rect x="13" y="37" width="22" height="5" rx="2"/>`)
	case nchess.Rook:
		sb.WriteString(`<polygon points="15,9 15,16 33,16 33,9 29,9 29,12 26,12 26,9 22,9 22,12 19,12 19,9"/>`)
		sb.WriteString(`<rect x="17" y="16" width="14" height="20"/>`)
		sb.WriteString(`<rect x="13" y="36" width="22" height="6" rx="2"/>`)
	case nchess.Knight:
		sb.WriteString(`<polygon points="17,40 17,33 21,27 18,23 22,12 27,9 33,15 34,25 29,23 26,27 30,33 30,40"/>`)
		sb.WriteString(`<rect x="13" y="40" width="22" height="3" rx="1"/>`)
	case nchess.Bishop:
		sb.WriteString(`<circle cx="24" cy="9" r="3"/>`)
		sb.WriteString(`<path d="M24 12 C31 18 33 25 29 31 L19 31 C15 25 17 18 24 12 Z"/>`)
		sb.WriteString(`<line x1="24" y1="17" x2="24" y2="26" stroke-width="2"/>`)
		sb.WriteString(`<polygon points="17,31 31,31 33,37 15,37"/>`)
		sb.WriteString(`<rect x="13" y="37" width="22" height="5" rx="2"/>`)
	case nchess.Queen:
		sb.WriteString(`<polygon points="13,15 18,27 21,14 24,26 27,14 30,27 35,15 33,33 15,33"/>`)
		sb.WriteString(`<circle cx="13" cy="13" r="2.5"/>`)
		sb.WriteString(`<circle cx="21" cy="11" r="2.5"/>`)
		sb.WriteString(`<circle cx="27" cy="11" r="2.5"/>`)
		sb.WriteString(`<circle cx="35" cy="13" r="2.5"/>`)
		sb.WriteString(`<rect x="14" y="33" width="20" height="4"/>`)
		sb.WriteString(`<rect x="12" y="37" width="24" height="5" rx="2"/>`)
	case nchess.King:
		sb.WriteString(`<rect x="22" y="6" width="4" height="10"/>`)
		sb.WriteString(`<rect x="19" y="9" width="10" height="4"/>`)
		sb.WriteString(`<polygon points="16,17 32,17 34,33 14,33"/>`)
		sb.WriteString(`<rect x="14" y="33" width="20" height="4"/>`)
		sb.WriteString(`<rect x="12" y="37" width="24" height="5" rx="2"/>`)
	}

	sb.WriteString(`</g>`)
}
