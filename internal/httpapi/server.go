package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/parkgb/agentchess/internal/archive"
	"github.com/parkgb/agentchess/internal/game"
	"github.com/parkgb/agentchess/internal/render"
	"github.com/parkgb/agentchess/internal/session"
	"github.com/parkgb/agentchess/pkg/gamedto"
)

// MatchRunner plays one session to completion. Satisfied by *agents.Match.
type MatchRunner interface {
	Run(ctx context.Context, sessionID string) error
}

// MatchFactory builds a runner for one session.
type MatchFactory func() (MatchRunner, error)

type Config struct {
	WhiteModel string
	BlackModel string
}

// Server exposes the session API and the web UI over fasthttp.
type Server struct {
	sessions *session.Manager
	renderer render.BoardRenderer
	repo     archive.Repository
	matches  MatchFactory
	cfg      Config
	logger   *zap.Logger

	mu      sync.Mutex
	running map[string]struct{}

	srv *fasthttp.Server
}

func NewServer(sessions *session.Manager, renderer render.BoardRenderer, repo archive.Repository, matches MatchFactory, cfg Config, logger *zap.Logger) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("archive repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sessions: sessions,
		renderer: renderer,
		repo:     repo,
		matches:  matches,
		cfg:      cfg,
		logger:   logger,
		running:  make(map[string]struct{}),
	}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "agentchess",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve runs the server on an existing listener. Tests use it with an
// in-memory listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// Handler routes every request. Paths under /api/sessions/{id} carry the
// session id as the third segment.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/" && method == fasthttp.MethodGet:
		s.handleIndex(ctx)
	case path == "/api/sessions" && method == fasthttp.MethodPost:
		s.handleCreateSession(ctx)
	case path == "/api/games" && method == fasthttp.MethodGet:
		s.handleRecentGames(ctx)
	case strings.HasPrefix(path, "/api/sessions/"):
		s.handleSessionRoute(ctx, method, strings.TrimPrefix(path, "/api/sessions/"))
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleSessionRoute(ctx *fasthttp.RequestCtx, method, rest string) {
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
		return
	}

	switch {
	case action == "" && method == fasthttp.MethodGet:
		s.handleGetSession(ctx, id)
	case action == "start" && method == fasthttp.MethodPost:
		s.handleStart(ctx, id)
	case action == "moves" && method == fasthttp.MethodPost:
		s.handleMove(ctx, id)
	case action == "history" && method == fasthttp.MethodGet:
		s.handleHistory(ctx, id)
	case action == "legal-moves" && method == fasthttp.MethodGet:
		s.handleLegalMoves(ctx, id)
	case action == "reset" && method == fasthttp.MethodPost:
		s.handleReset(ctx, id)
	case action == "board.svg" && method == fasthttp.MethodGet:
		s.handleBoard(ctx, id, "svg")
	case action == "board.png" && method == fasthttp.MethodGet:
		s.handleBoard(ctx, id, "png")
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleCreateSession(ctx *fasthttp.RequestCtx) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		s.logger.Error("create session", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "create session failed")
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, toSessionView(sess))
}

func (s *Server) handleGetSession(ctx *fasthttp.RequestCtx, id string) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSessionView(sess))
}

// handleStart launches the agent match in the background. The board is
// cleared first, matching the start control in the UI.
func (s *Server) handleStart(ctx *fasthttp.RequestCtx, id string) {
	if s.matches == nil {
		s.writeError(ctx, fasthttp.StatusServiceUnavailable, "no players configured")
		return
	}

	sess, err := s.sessions.Reset(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	s.mu.Lock()
	if _, busy := s.running[id]; busy {
		s.mu.Unlock()
		s.writeError(ctx, fasthttp.StatusConflict, "match already running")
		return
	}
	s.running[id] = struct{}{}
	s.mu.Unlock()

	runner, err := s.matches()
	if err != nil {
		s.clearRunning(id)
		s.logger.Error("build match", zap.String("session", id), zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "match setup failed")
		return
	}

	go s.runMatch(id, runner)

	s.writeJSON(ctx, fasthttp.StatusAccepted, toSessionView(sess))
}

func (s *Server) runMatch(id string, runner MatchRunner) {
	defer s.clearRunning(id)

	ctx := context.Background()
	if err := runner.Run(ctx, id); err != nil {
		s.logger.Error("match run failed", zap.String("session", id), zap.Error(err))
		return
	}
	if err := s.archiveSession(ctx, id); err != nil && !errors.Is(err, archive.ErrDuplicateGame) {
		s.logger.Warn("archive failed", zap.String("session", id), zap.Error(err))
	}
}

func (s *Server) clearRunning(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

func (s *Server) archiveSession(ctx context.Context, id string) error {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(sess.Moves) == 0 {
		return nil
	}
	pgn, err := s.sessions.PGN(ctx, id)
	if err != nil {
		return err
	}

	rec := &archive.Record{
		SessionUUID: sess.ID,
		WhiteModel:  s.cfg.WhiteModel,
		BlackModel:  s.cfg.BlackModel,
		Outcome:     sess.Outcome,
		PGN:         pgn,
		Summary:     sess.Summary,
		StartedAt:   sess.CreatedAt,
		EndedAt:     sess.UpdatedAt,
		PlyCount:    len(sess.Moves),
	}
	for _, mv := range sess.Moves {
		rec.MovesUCI = append(rec.MovesUCI, mv.UCI)
		rec.MovesSAN = append(rec.MovesSAN, mv.SAN)
	}
	_, err = s.repo.Insert(ctx, rec)
	return err
}

// handleMove applies a single move by hand, outside any running match.
// Rejections come back with HTTP 200: the rejection is the payload.
func (s *Server) handleMove(ctx *fasthttp.RequestCtx, id string) {
	var req gamedto.MoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid json body")
		return
	}

	res, sess, err := s.sessions.Apply(ctx, id, req.Move)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.MoveResponse{
		Status:  string(res.Status),
		Text:    res.Text,
		UCI:     res.UCI,
		SAN:     res.SAN,
		FEN:     res.FEN,
		Outcome: string(res.Outcome),
		Session: toSessionView(sess),
	})
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx, id string) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSessionView(sess).Moves)
}

func (s *Server) handleLegalMoves(ctx *fasthttp.RequestCtx, id string) {
	text, err := s.sessions.LegalMoves(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	moves, err := s.sessions.LegalMoveList(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.LegalMovesResponse{Text: text, Moves: moves})
}

func (s *Server) handleReset(ctx *fasthttp.RequestCtx, id string) {
	s.mu.Lock()
	_, busy := s.running[id]
	s.mu.Unlock()
	if busy {
		s.writeError(ctx, fasthttp.StatusConflict, "match still running")
		return
	}

	sess, err := s.sessions.Reset(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSessionView(sess))
}

// handleBoard renders the position after ?ply=N moves; without the
// parameter it renders the current position.
func (s *Server) handleBoard(ctx *fasthttp.RequestCtx, id, format string) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}

	ply := len(sess.Moves)
	if arg := string(ctx.QueryArgs().Peek("ply")); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 || n > len(sess.Moves) {
			s.writeError(ctx, fasthttp.StatusBadRequest, "invalid ply")
			return
		}
		ply = n
	}

	board, highlight, err := boardAtPly(sess, ply)
	if err != nil {
		s.logger.Error("rebuild board", zap.String("session", id), zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "board render failed")
		return
	}

	opts := render.Options{Highlight: highlight}
	if format == "png" {
		data, err := s.renderer.RenderPNG(ctx, board, opts)
		if err != nil {
			s.logger.Error("render png", zap.String("session", id), zap.Error(err))
			s.writeError(ctx, fasthttp.StatusInternalServerError, "board render failed")
			return
		}
		ctx.SetContentType("image/png")
		ctx.SetBody(data)
		return
	}
	ctx.SetContentType("image/svg+xml")
	ctx.SetBody(s.renderer.RenderSVG(board, opts))
}

func (s *Server) handleRecentGames(ctx *fasthttp.RequestCtx) {
	limit := 10
	if arg := string(ctx.QueryArgs().Peek("limit")); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("recent games", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "archive lookup failed")
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, recs)
}

func boardAtPly(sess *session.Session, ply int) (*nchess.Board, *render.Highlight, error) {
	if ply == 0 {
		return nchess.NewGame().Position().Board(), nil, nil
	}
	rec := sess.Moves[ply-1]
	board, err := game.BoardFromFEN(rec.FEN)
	if err != nil {
		return nil, nil, err
	}
	var highlight *render.Highlight
	if from, to, ok := parseUCISquares(rec.UCI); ok {
		highlight = &render.Highlight{From: from, To: to}
	}
	return board, highlight, nil
}

func parseUCISquares(uci string) (nchess.Square, nchess.Square, bool) {
	if len(uci) < 4 {
		return 0, 0, false
	}
	from, ok1 := squareFromString(uci[0:2])
	to, ok2 := squareFromString(uci[2:4])
	return from, to, ok1 && ok2
}

func squareFromString(s string) (nchess.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	file := nchess.File(s[0] - 'a')
	rank := nchess.Rank(s[1] - '1')
	return nchess.NewSquare(file, rank), true
}

func toSessionView(sess *session.Session) *gamedto.SessionView {
	if sess == nil {
		return nil
	}
	view := &gamedto.SessionView{
		ID:        sess.ID,
		Status:    string(sess.Status),
		Outcome:   sess.Outcome,
		Summary:   sess.Summary,
		Error:     sess.Error,
		Moves:     make([]gamedto.MoveView, 0, len(sess.Moves)),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	for _, mv := range sess.Moves {
		view.Moves = append(view.Moves, gamedto.MoveView{
			Ply:         mv.Ply,
			Color:       mv.Color,
			UCI:         mv.UCI,
			SAN:         mv.SAN,
			FEN:         mv.FEN,
			Description: mv.Description,
		})
	}
	return view
}

func (s *Server) writeSessionError(ctx *fasthttp.RequestCtx, err error) {
	if errors.Is(err, session.ErrNotFound) {
		s.writeError(ctx, fasthttp.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("session operation failed", zap.Error(err))
	s.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	s.writeJSON(ctx, status, gamedto.ErrorResponse{Error: msg})
}
