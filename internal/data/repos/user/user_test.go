package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos/testutil"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &domain.User{
		ID:           uuid.New(),
		Email:        "userrepo@example.com",
		PasswordHash: "hash",
		DisplayName:  "User Repo",
	}
	if _, err := repo.Create(dbc, []*domain.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByEmails(dbc, []string{"userrepo@example.com"}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByEmails: err=%v len=%d", err, len(rows))
	}

	exists, err := repo.EmailExists(dbc, "userrepo@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}
	exists, err = repo.EmailExists(dbc, "nobody@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists miss: err=%v exists=%v", err, exists)
	}

	if err := repo.UpdateDisplayName(dbc, u.ID, "Renamed"); err != nil {
		t.Fatalf("UpdateDisplayName: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after rename: err=%v len=%d", err, len(rows))
	}
	if rows[0].DisplayName != "Renamed" {
		t.Fatalf("DisplayName = %q, want %q", rows[0].DisplayName, "Renamed")
	}

	// empty inputs short-circuit without touching the db
	if rows, err := repo.GetByIDs(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(nil): err=%v len=%d", err, len(rows))
	}
}
