package httpapi

import (
	_ "embed"

	"github.com/valyala/fasthttp"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(indexHTML)
}
