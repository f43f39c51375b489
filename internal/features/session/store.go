package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"reportdesk/internal/common/config"
	"reportdesk/internal/common/database"
)

// TokenStore persists the bearer token under a fixed key. Load returns ""
// with a nil error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string) error
	Clear(ctx context.Context, key string) error
	Close() error
}

// NewTokenStore builds the store selected by session.store.
func NewTokenStore(cfg *config.Config) (TokenStore, error) {
	switch cfg.Session.Store {
	case config.StoreMemory:
		return NewMemoryTokenStore(), nil
	case config.StoreRedis:
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisTokenStore(client), nil
	case config.StoreFile, "":
		return NewFileTokenStore(cfg.Session.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Session.Store)
	}
}

// ==========================
// Memory
// ==========================

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[key], nil
}

func (s *MemoryTokenStore) Save(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

func (s *MemoryTokenStore) Close() error { return nil }

// ==========================
// File
// ==========================

// FileTokenStore keeps a YAML map of key to token in a 0600 file, the CLI
// counterpart of browser local storage.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Path() string {
	return s.path
}

func (s *FileTokenStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", err
	}
	return entries[key], nil
}

func (s *FileTokenStore) Save(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		entries = map[string]string{}
	}
	entries[key] = token
	return s.write(entries)
}

func (s *FileTokenStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		// An unreadable file cannot hold a usable token.
		return s.remove()
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		return s.remove()
	}
	return s.write(entries)
}

func (s *FileTokenStore) Close() error { return nil }

func (s *FileTokenStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	entries := map[string]string{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return entries, nil
}

func (s *FileTokenStore) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileTokenStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// ==========================
// Redis
// ==========================

// RedisTokenStore shares one session between several consoles.
type RedisTokenStore struct {
	client *database.RedisClient
}

func NewRedisTokenStore(client *database.RedisClient) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Load(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis load token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, key, token string) error {
	if err := s.client.Set(ctx, key, token, 0); err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
