package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// Postgres stores records as JSONB rows through a pgx pool
type Postgres struct {
	db *pgxpool.Pool
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS onboarding_records (
		user_id VARCHAR(128) PRIMARY KEY,
		version BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postgres schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context, userID string) (*state.Record, error) {
	if err := state.ValidUserID(userID); err != nil {
		return nil, err
	}
	var data []byte
	err := p.db.QueryRow(ctx,
		`SELECT data FROM onboarding_records WHERE user_id = $1`, userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return state.NewRecord(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return state.Decode(data)
}

func (p *Postgres) Save(ctx context.Context, r *state.Record) error {
	if err := state.ValidUserID(r.UserID); err != nil {
		return err
	}
	stamped := r.Stamped(time.Now())
	data, err := state.Encode(stamped)
	if err != nil {
		return err
	}

	var query string
	args := []any{r.UserID, stamped.Version, stamped.Status, data, stamped.UpdatedAt}
	if r.Version == 0 {
		query = `
			INSERT INTO onboarding_records (user_id, version, status, data, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id) DO NOTHING
		`
	} else {
		query = `
			UPDATE onboarding_records
			SET version = $2, status = $3, data = $4, updated_at = $5
			WHERE user_id = $1 AND version = $6
		`
		args = append(args, r.Version)
	}

	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var stored int64
		_ = p.db.QueryRow(ctx,
			`SELECT version FROM onboarding_records WHERE user_id = $1`, r.UserID,
		).Scan(&stored)
		return state.StaleError(r.UserID, r.Version, stored)
	}
	r.Commit(stamped)
	return nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
