package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// TokenKey is the fixed key the session token is stored under.
const TokenKey = "token"

var ErrTokenNotFound = errors.New("token not found")

// TokenRepository persists the session token across process restarts.
type TokenRepository interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// FileTokenRepository keeps the token in a single file readable only by
// the current user.
type FileTokenRepository struct {
	path string
}

func NewFileTokenRepository(path string) *FileTokenRepository {
	return &FileTokenRepository{path: path}
}

func (r *FileTokenRepository) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (r *FileTokenRepository) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(r.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (r *FileTokenRepository) Delete(_ context.Context) error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// RedisTokenRepository keeps the token in Redis under namespace:token, so
// several front ends of one user can share a session.
type RedisTokenRepository struct {
	client *redis.Client
	key    string
}

func NewRedisTokenRepository(client *redis.Client, namespace string) *RedisTokenRepository {
	key := TokenKey
	if namespace != "" {
		key = namespace + ":" + TokenKey
	}
	return &RedisTokenRepository{client: client, key: key}
}

func (r *RedisTokenRepository) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return token, nil
}

func (r *RedisTokenRepository) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// NewRedisClient builds a client from a redis:// URL, or from addr when the
// URL is empty, and pings it.
func NewRedisClient(ctx context.Context, redisURL, addr string) (*redis.Client, error) {
	var opt *redis.Options
	if redisURL != "" {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}
