package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos/testutil"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := &domain.User{ID: uuid.New(), Email: "usertokenrepo@example.com", PasswordHash: "hash"}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tok := &domain.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	if _, err := repo.Create(dbc, []*domain.UserToken{tok}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByRefreshToken(dbc, tok.RefreshToken)
	if err != nil {
		t.Fatalf("GetByRefreshToken: %v", err)
	}
	if got.UserID != u.ID {
		t.Fatalf("GetByRefreshToken user = %s, want %s", got.UserID, u.ID)
	}

	expired := &domain.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	if _, err := repo.Create(dbc, []*domain.UserToken{expired}); err != nil {
		t.Fatalf("seed expired token: %v", err)
	}

	n, err := repo.DeleteExpired(dbc, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired removed %d rows, want 1", n)
	}

	if err := repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	if _, err := repo.GetByRefreshToken(dbc, tok.RefreshToken); err == nil {
		t.Fatalf("GetByRefreshToken after delete: want error, got nil")
	}
}
