// Package store opens the persistence backend selected in settings. The
// file backend lives in package state; the database backends live here.
package store

import (
	"context"
	"fmt"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// Open returns the store configured by s.Driver.
func Open(ctx context.Context, s config.StoreSettings) (state.Store, error) {
	switch s.Driver {
	case "", "file":
		dir := s.Dir
		if dir == "" {
			dir = config.DefaultStoreDir
		}
		return state.NewFileStore(dir)
	case "sqlite":
		return NewSQLite(ctx, s.DSN)
	case "redis":
		return NewRedis(ctx, RedisConfig{
			Addr:     s.Addr,
			Password: s.Password,
			DB:       s.DB,
			Prefix:   s.Prefix,
		})
	case "postgres":
		return NewPostgres(ctx, s.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, s.Driver)
	}
}
