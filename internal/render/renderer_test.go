package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestRenderSVGInitialPosition(t *testing.T) {
	r := NewBoardRenderer()
	board := nchess.NewGame().Position().Board()

	svg := string(r.RenderSVG(board, Options{}))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("svg does not start with an svg element: %.80s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("svg is not closed: %.80s", svg[len(svg)-80:])
	}
	// 32 pieces, each a single group.
	if got := strings.Count(svg, "<g transform="); got != 32 {
		t.Fatalf("piece group count = %d, want 32", got)
	}
	// 64 squares plus the frame rectangle.
	if got := strings.Count(svg, "<rect"); got < 65 {
		t.Fatalf("rect count = %d, want at least 65", got)
	}
}

func TestRenderSVGHighlight(t *testing.T) {
	r := NewBoardRenderer()
	game := nchess.NewGame()
	mv, err := nchess.UCINotation{}.Decode(game.Position(), "e2e4")
	if err != nil {
		t.Fatalf("decode e2e4: %v", err)
	}
	if err := game.Move(mv, nil); err != nil {
		t.Fatalf("apply e2e4: %v", err)
	}

	svg := string(r.RenderSVG(game.Position().Board(), Options{
		Highlight: &Highlight{From: mv.S1(), To: mv.S2()},
	}))

	if !strings.Contains(svg, originFill) {
		t.Fatalf("highlighted origin square missing from svg")
	}
	if !strings.Contains(svg, "<line") {
		t.Fatalf("move arrow missing from svg")
	}
}

func TestRenderSVGEmptyBoardOmitsPieces(t *testing.T) {
	r := NewBoardRenderer()
	svg := string(r.RenderSVG(nil, Options{}))
	if strings.Contains(svg, "<g transform=") {
		t.Fatalf("nil board should render no pieces")
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewBoardRenderer()
	board := nchess.NewGame().Position().Board()

	data, err := r.RenderPNG(context.Background(), board, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != imageSize || bounds.Dy() != imageSize {
		t.Fatalf("image size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), imageSize, imageSize)
	}
}

func TestRenderPNGNilBoard(t *testing.T) {
	r := NewBoardRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil board")
	}
}

func TestRenderPNGCancelledContext(t *testing.T) {
	r := NewBoardRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board := nchess.NewGame().Position().Board()
	if _, err := r.RenderPNG(ctx, board, Options{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
