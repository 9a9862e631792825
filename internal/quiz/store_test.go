package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreExpiresSessions(t *testing.T) {
	store := newMemoryStore(time.Hour)
	base := time.Now()
	now := base
	store.now = func() time.Time { return now }

	session, err := NewSession(uuid.New(), uuid.New(), 3)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = base.Add(time.Hour + time.Minute)
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after expiry: want ErrSessionNotFound, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("expired session still stored")
	}
}

func TestMemoryStoreSaveRefreshesDeadline(t *testing.T) {
	store := newMemoryStore(time.Hour)
	base := time.Now()
	now := base
	store.now = func() time.Time { return now }

	session, err := NewSession(uuid.New(), uuid.New(), 3)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	now = base.Add(50 * time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	now = base.Add(90 * time.Minute)
	if _, err := store.Get(ctx, session.ID); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
}
