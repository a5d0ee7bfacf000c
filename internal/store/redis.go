package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// DefaultRedisKeyPrefix namespaces session keys.
const DefaultRedisKeyPrefix = "intakeflow"

// RedisStore keeps each session as a JSON value with an optional TTL. A sorted set
// scored by update time indexes the live sessions for listing.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to the redis:// URL given by WithRedisURL and pings it.
func NewRedisStore(ctx context.Context, opts ...Option) (*RedisStore, error) {
	cfg := Opts{KeyPrefix: DefaultRedisKeyPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("RedisStore.NewRedisStore: creating Redis store", "url_set", cfg.DSN != "", "ttl", cfg.TTL)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("redis URL not set")
	}
	redisOpts, err := goredis.ParseURL(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	redisOpts.DialTimeout = 5 * time.Second
	rdb := goredis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		slog.Error("RedisStore.NewRedisStore: ping failed", "error", err)
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: cfg.KeyPrefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) key(id string) string { return s.prefix + ":session:" + id }

func (s *RedisStore) indexKey() string { return s.prefix + ":sessions" }

func (s *RedisStore) SaveIntakeState(ctx context.Context, state models.IntakeState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode intake state %s: %w", state.ID, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(state.ID), raw, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), goredis.Z{Score: float64(state.UpdatedAt.UnixNano()), Member: state.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("RedisStore.SaveIntakeState: failed", "error", err, "id", state.ID)
		return fmt.Errorf("failed to save intake state %s: %w", state.ID, err)
	}
	slog.Debug("RedisStore.SaveIntakeState: saved", "id", state.ID, "stage", state.Stage)
	return nil
}

func (s *RedisStore) GetIntakeState(ctx context.Context, id string) (*models.IntakeState, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		slog.Error("RedisStore.GetIntakeState: failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to load intake state %s: %w", id, err)
	}
	var state models.IntakeState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode intake state %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisStore) DeleteIntakeState(ctx context.Context, id string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("RedisStore.DeleteIntakeState: failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete intake state %s: %w", id, err)
	}
	return nil
}

// ListIntakeStates returns live sessions, most recently updated first. Index entries
// whose value has expired are pruned.
func (s *RedisStore) ListIntakeStates(ctx context.Context) ([]models.IntakeState, error) {
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}
	states := []models.IntakeState{}
	if len(ids) == 0 {
		return states, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var expired []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var state models.IntakeState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("failed to decode intake state %s: %w", ids[i], err)
		}
		states = append(states, state)
	}
	if len(expired) > 0 {
		if err := s.rdb.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			slog.Warn("RedisStore.ListIntakeStates: failed to prune index", "error", err, "count", len(expired))
		}
	}
	sortByUpdatedDesc(states)
	return states, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
