package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	squareSize   = 48
	boardSquares = 8
	boardMargin  = 20
	boardSize    = squareSize * boardSquares
	imageSize    = boardSize + boardMargin*2
)

const (
	lightSquareFill = "#ffce9e"
	darkSquareFill  = "#d18b47"
	originFill      = "#9e9e9e"
	arrowStroke     = "#15781b"
	frameFill       = "#212121"
)

// Highlight marks the most recently applied move: the origin square is
// shaded and an arrow is drawn to the destination, the way the original
// board images mark the last move.
type Highlight struct {
	From nchess.Square
	To   nchess.Square
}

type Options struct {
	Highlight *Highlight
}

// BoardRenderer turns a board into an SVG document and, via rasterization,
// into a PNG. SVG is what the web UI displays; PNG serves clients that want
// a plain image.
type BoardRenderer interface {
	RenderSVG(board *nchess.Board, opts Options) []byte
	RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error)
}

type svgBoardRenderer struct{}

func NewBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

func (r *svgBoardRenderer) RenderSVG(board *nchess.Board, opts Options) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		imageSize, imageSize, imageSize, imageSize)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, imageSize, imageSize, frameFill)

	drawSquares(&sb, opts.Highlight)
	drawCoordinateLabels(&sb)
	if board != nil {
		drawPieces(&sb, board)
	}
	if opts.Highlight != nil && opts.Highlight.From != opts.Highlight.To {
		drawArrow(&sb, opts.Highlight.From, opts.Highlight.To)
	}

	sb.WriteString(`</svg>`)
	return []byte(sb.String())
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	svg := r.RenderSVG(board, opts)
	// Coordinate labels are <text> elements which oksvg does not rasterize;
	// IgnoreErrorMode skips them and they are redrawn on the bitmap below.
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(imageSize), float64(imageSize))

	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	scanner := rasterx.NewScannerGV(imageSize, imageSize, img, img.Bounds())
	raster := rasterx.NewDasher(imageSize, imageSize, scanner)
	icon.Draw(raster, 1.0)

	drawBitmapCoordinates(img)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(sb *strings.Builder, highlight *Highlight) {
	for rank := nchess.Rank8; ; rank-- {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			sq := nchess.NewSquare(file, rank)
			x, y := squareOrigin(sq)
			fill := darkSquareFill
			if (int(file)+int(rank))%2 == 1 {
				fill = lightSquareFill
			}
			if highlight != nil && sq == highlight.From {
				fill = originFill
			}
			fmt.Fprintf(sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
				x, y, squareSize, squareSize, fill)
		}
		if rank == nchess.Rank1 {
			break
		}
	}
}

func drawPieces(sb *strings.Builder, board *nchess.Board) {
	squares := board.SquareMap()
	for rank := nchess.Rank8; ; rank-- {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			sq := nchess.NewSquare(file, rank)
			piece, ok := squares[sq]
			if !ok || piece == nchess.NoPiece {
				continue
			}
			x, y := squareOrigin(sq)
			pieceGlyph(sb, piece, x, y)
		}
		if rank == nchess.Rank1 {
			break
		}
	}
}

func drawArrow(sb *strings.Builder, from, to nchess.Square) {
	fx, fy := squareCenter(from)
	tx, ty := squareCenter(to)
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="6" stroke-opacity="0.7"/>`,
		fx, fy, tx, ty, arrowStroke)
	fmt.Fprintf(sb, `<circle cx="%d" cy="%d" r="7" fill="%s" fill-opacity="0.7"/>`,
		tx, ty, arrowStroke)
}

func drawCoordinateLabels(sb *strings.Builder) {
	for i := 0; i < boardSquares; i++ {
		fileLabel := string(rune('a' + i))
		rankLabel := string(rune('8' - i))
		fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="11" fill="#e0e0e0" text-anchor="middle">%s</text>`,
			boardMargin+i*squareSize+squareSize/2, imageSize-6, fileLabel)
		fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="11" fill="#e0e0e0" text-anchor="middle">%s</text>`,
			boardMargin/2, boardMargin+i*squareSize+squareSize/2+4, rankLabel)
	}
}

// drawBitmapCoordinates draws rank and file labels directly on the raster
// since the SVG text elements are skipped during rasterization.
func drawBitmapCoordinates(img *image.RGBA) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{224, 224, 224, 255}),
		Face: basicfont.Face7x13,
	}
	for i := 0; i < boardSquares; i++ {
		fileLabel := string(rune('a' + i))
		rankLabel := string(rune('8' - i))

		x := boardMargin + i*squareSize + squareSize/2 - 3
		drawer.Dot = fixed.P(x, imageSize-6)
		drawer.DrawString(fileLabel)

		drawer.Dot = fixed.P(boardMargin/2-3, boardMargin+i*squareSize+squareSize/2+4)
		drawer.DrawString(rankLabel)
	}
}

func squareOrigin(sq nchess.Square) (int, int) {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	return boardMargin + col*squareSize, boardMargin + row*squareSize
}

func squareCenter(sq nchess.Square) (int, int) {
	x, y := squareOrigin(sq)
	return x + squareSize/2, y + squareSize/2
}
