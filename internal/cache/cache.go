// Package cache persists expensive payloads (fetched bars, finished backtest
// results) through a storage backend, with TTL expiry tracked in a metadata
// sidecar next to each payload.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/storage"
)

const metaSuffix = ".meta.json"

// Metadata is the sidecar written next to every payload. TTLSeconds nil
// means the entry never expires on its own.
type Metadata struct {
	CreatedAt  time.Time      `json:"created_at"`
	TTLSeconds *float64       `json:"ttl_seconds"`
	KeyParts   map[string]any `json:"key_parts"`
}

func (m Metadata) expired(now time.Time, maxAge time.Duration) bool {
	age := now.Sub(m.CreatedAt)
	if maxAge > 0 && age > maxAge {
		return true
	}
	if m.TTLSeconds != nil && age.Seconds() > *m.TTLSeconds {
		return true
	}
	return false
}

// Store is a content-addressed TTL cache over a storage backend. Any entry
// it cannot read, parse or trust counts as a miss; the caller recomputes and
// overwrites.
type Store struct {
	backend storage.Backend
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for cache diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source; tests use this to step through TTLs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the payload under its canonical key with the given extension,
// plus the metadata sidecar. ttl <= 0 stores a non-expiring entry.
func (s *Store) Save(ctx context.Context, parts map[string]any, ext string, payload []byte, ttl time.Duration) error {
	key, err := Key(parts)
	if err != nil {
		return err
	}

	meta := Metadata{CreatedAt: s.now().UTC(), KeyParts: parts}
	if ttl > 0 {
		secs := ttl.Seconds()
		meta.TTLSeconds = &secs
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("serializing metadata: %w", err)
	}

	if err := s.backend.Write(ctx, key+"."+ext, payload); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	if err := s.backend.Write(ctx, key+metaSuffix, metaData); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	s.logger.Debug("cache entry saved",
		zap.String("key", key),
		zap.String("ext", ext),
		zap.Int("bytes", len(payload)))
	return nil
}

// Load reads the payload for the parts, if present and fresh. maxAge <= 0
// defers entirely to the TTL stored at save time. Corrupt or unreadable
// entries are reported as misses, never as errors.
func (s *Store) Load(ctx context.Context, parts map[string]any, ext string, maxAge time.Duration) ([]byte, bool) {
	key, err := Key(parts)
	if err != nil {
		return nil, false
	}

	metaData, err := s.backend.Read(ctx, key+metaSuffix)
	if err != nil {
		return nil, false
	}
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		s.logger.Debug("cache metadata corrupt, treating as miss", zap.String("key", key))
		return nil, false
	}
	if meta.expired(s.now(), maxAge) {
		s.logger.Debug("cache entry expired", zap.String("key", key))
		return nil, false
	}

	payload, err := s.backend.Read(ctx, key+"."+ext)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// SaveJSON stores v as a JSON payload.
func (s *Store) SaveJSON(ctx context.Context, parts map[string]any, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializing payload: %w", err)
	}
	return s.Save(ctx, parts, "json", data, ttl)
}

// LoadJSON reads a JSON payload into v. A payload that no longer parses is a
// miss.
func (s *Store) LoadJSON(ctx context.Context, parts map[string]any, v any) (bool, error) {
	data, ok := s.Load(ctx, parts, "json", 0)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Debug("cache payload corrupt, treating as miss", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Clear removes entries older than maxAge; maxAge <= 0 removes everything.
// It returns the number of entries removed. Payloads whose sidecar is
// unreadable are removed too.
func (s *Store) Clear(ctx context.Context, maxAge time.Duration) (int, error) {
	paths, err := s.backend.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}

	// group payload and sidecar paths by key
	byKey := make(map[string][]string)
	for _, path := range paths {
		key := path
		if strings.HasSuffix(path, metaSuffix) {
			key = strings.TrimSuffix(path, metaSuffix)
		} else if i := strings.IndexByte(path, '.'); i >= 0 {
			key = path[:i]
		}
		byKey[key] = append(byKey[key], path)
	}

	now := s.now()
	removed := 0
	for key, group := range byKey {
		metaData, err := s.backend.Read(ctx, key+metaSuffix)
		stale := true
		if err == nil {
			var meta Metadata
			if json.Unmarshal(metaData, &meta) == nil {
				stale = maxAge <= 0 || now.Sub(meta.CreatedAt) > maxAge
			}
		}
		if !stale {
			continue
		}
		for _, path := range group {
			if err := s.backend.Delete(ctx, path); err != nil {
				s.logger.Warn("removing cache entry failed",
					zap.String("path", path), zap.Error(err))
			}
		}
		removed++
	}

	s.logger.Info("cache cleared",
		zap.Int("removed", removed),
		zap.Duration("max_age", maxAge))
	return removed, nil
}
