package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository connects to the database and verifies the
// connection before returning.
func NewPostgresRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

const recordColumns = `
	id,
	session_uuid,
	white_model,
	black_model,
	outcome,
	moves_uci,
	moves_san,
	pgn,
	summary,
	started_at,
	ended_at,
	ply_count`

func (r *postgresRepository) Insert(ctx context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil archive record")
	}

	movesUCI, err := json.Marshal(rec.MovesUCI)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(rec.MovesSAN)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO agent_games (
			session_uuid,
			white_model,
			black_model,
			outcome,
			moves_uci,
			moves_san,
			pgn,
			summary,
			started_at,
			ended_at,
			ply_count
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, $9, $10, $11)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		rec.SessionUUID,
		rec.WhiteModel,
		rec.BlackModel,
		rec.Outcome,
		movesUCI,
		movesSAN,
		rec.PGN,
		rec.Summary,
		rec.StartedAt,
		rec.EndedAt,
		rec.PlyCount,
	).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return id.Int64, nil
}

func (r *postgresRepository) Get(ctx context.Context, id int64) (*Record, error) {
	query := `SELECT` + recordColumns + `
		FROM agent_games
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepository) GetBySession(ctx context.Context, sessionUUID string) (*Record, error) {
	query := `SELECT` + recordColumns + `
		FROM agent_games
		WHERE session_uuid = $1
		ORDER BY ended_at DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, sessionUUID))
}

func (r *postgresRepository) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + recordColumns + `
		FROM agent_games
		ORDER BY ended_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	out := make([]*Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *postgresRepository) scanOne(row rowScanner) (*Record, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec          Record
		movesUCIJSON []byte
		movesSANJSON []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.SessionUUID,
		&rec.WhiteModel,
		&rec.BlackModel,
		&rec.Outcome,
		&movesUCIJSON,
		&movesSANJSON,
		&rec.PGN,
		&rec.Summary,
		&rec.StartedAt,
		&rec.EndedAt,
		&rec.PlyCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	if err := json.Unmarshal(movesUCIJSON, &rec.MovesUCI); err != nil {
		return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSANJSON, &rec.MovesSAN); err != nil {
		return nil, fmt.Errorf("unmarshal moves_san: %w", err)
	}
	return &rec, nil
}
