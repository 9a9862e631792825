package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	goredis "github.com/studybuddy/studybuddy-backend/internal/clients/redis"
	"github.com/studybuddy/studybuddy-backend/internal/platform/envutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps live sessions between requests. Sessions are deleted on
// Finish or Restart; redis entries also age out via TTL.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewStore uses redis when a cache is configured, an in-process map
// otherwise.
func NewStore(log *logger.Logger, cache *goredis.Cache) Store {
	ttlHours := envutil.GetEnvAsInt("QUIZ_SESSION_TTL_HOURS", 24, log)
	ttl := time.Duration(ttlHours) * time.Hour

	if cache != nil {
		return &redisStore{cache: cache, ttl: ttl}
	}
	return newMemoryStore(ttl)
}

// memoryStore ages sessions out on the same TTL the redis store uses, so
// the fallback does not accumulate abandoned sessions forever.
type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[uuid.UUID]memoryEntry{},
	}
}

func (m *memoryStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	// copy so callers never mutate the stored session without Save
	s := entry.session
	clone := *s
	clone.Attempts = append([]Attempt(nil), s.Attempts...)
	if s.LastResult != nil {
		res := *s.LastResult
		clone.LastResult = &res
	}
	return &clone, nil
}

func (m *memoryStore) Save(ctx context.Context, s *Session) error {
	clone := *s
	clone.Attempts = append([]Attempt(nil), s.Attempts...)
	if s.LastResult != nil {
		res := *s.LastResult
		clone.LastResult = &res
	}

	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{session: &clone, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

type redisStore struct {
	cache *goredis.Cache
	ttl   time.Duration
}

func sessionKey(id uuid.UUID) string { return "quiz_session:" + id.String() }

func (r *redisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := r.cache.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, goredis.ErrMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *redisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, sessionKey(s.ID), raw, r.ttl)
}

func (r *redisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.cache.Delete(ctx, sessionKey(id))
}
