package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// SQLite stores records in a single table keyed by user id
type SQLite struct {
	DB *sql.DB
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS onboarding_records (
	user_id TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Load(ctx context.Context, userID string) (*state.Record, error) {
	if err := state.ValidUserID(userID); err != nil {
		return nil, err
	}
	var data string
	err := s.DB.QueryRowContext(ctx,
		`SELECT data FROM onboarding_records WHERE user_id = ?`, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return state.NewRecord(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return state.Decode([]byte(data))
}

func (s *SQLite) Save(ctx context.Context, r *state.Record) error {
	if err := state.ValidUserID(r.UserID); err != nil {
		return err
	}
	stamped := r.Stamped(time.Now())
	data, err := state.Encode(stamped)
	if err != nil {
		return err
	}

	var res sql.Result
	if r.Version == 0 {
		res, err = s.DB.ExecContext(ctx,
			`INSERT INTO onboarding_records (user_id, version, status, data, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT(user_id) DO NOTHING`,
			r.UserID, stamped.Version, stamped.Status, string(data), stamped.UpdatedAt)
	} else {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE onboarding_records SET version = ?, status = ?, data = ?, updated_at = ?
			WHERE user_id = ? AND version = ?`,
			stamped.Version, stamped.Status, string(data), stamped.UpdatedAt,
			r.UserID, r.Version)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return state.StaleError(r.UserID, r.Version, s.storedVersion(ctx, r.UserID))
	}
	r.Commit(stamped)
	return nil
}

func (s *SQLite) storedVersion(ctx context.Context, userID string) int64 {
	var v int64
	_ = s.DB.QueryRowContext(ctx,
		`SELECT version FROM onboarding_records WHERE user_id = ?`, userID,
	).Scan(&v)
	return v
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
