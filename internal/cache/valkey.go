package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const moviesListKey = "boxoffice:movies:list"

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	TTL      time.Duration
}

// ValkeyClient caches read projections that never change after startup.
// Seat availability is never cached.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client: rdb,
		ttl:    cfg.TTL,
	}, nil
}

// GetMoviesListRaw returns the cached movie list as raw JSON
func (v *ValkeyClient) GetMoviesListRaw(ctx context.Context) ([]byte, error) {
	data, err := v.client.Get(ctx, moviesListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetMoviesList stores the movie list as JSON
func (v *ValkeyClient) SetMoviesList(ctx context.Context, movies interface{}) error {
	data, err := json.Marshal(movies)
	if err != nil {
		return fmt.Errorf("failed to marshal movies list: %w", err)
	}
	if err := v.client.Set(ctx, moviesListKey, data, v.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache movies list: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
