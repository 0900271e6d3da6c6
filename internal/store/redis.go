package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

type (
	// Redis stores each record as a JSON string under prefix:onboarding:userID
	Redis struct {
		client *redis.Client
		prefix string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
)

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		Protocol:        2,
		DisableIdentity: true,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisWithClient(client, cfg.Prefix), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(userID string) string {
	if s.prefix == "" {
		return "onboarding:" + userID
	}
	return s.prefix + ":onboarding:" + userID
}

func (s *Redis) Load(ctx context.Context, userID string) (*state.Record, error) {
	if err := state.ValidUserID(userID); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return state.NewRecord(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return state.Decode(data)
}

// Save uses WATCH so a concurrent writer between the version read and the
// SET aborts the transaction.
func (s *Redis) Save(ctx context.Context, r *state.Record) error {
	if err := state.ValidUserID(r.UserID); err != nil {
		return err
	}
	key := s.key(r.UserID)
	stamped := r.Stamped(time.Now())
	data, err := state.Encode(stamped)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		stored := gjson.GetBytes(current, "version").Int()
		if stored != r.Version {
			return state.StaleError(r.UserID, r.Version, stored)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return state.StaleError(r.UserID, r.Version, -1)
	}
	if err != nil {
		return err
	}
	r.Commit(stamped)
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
