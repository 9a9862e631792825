package study

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos/testutil"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
)

func seedUser(t *testing.T, dbc dbctx.Context, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Email: email, PasswordHash: "hash"}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedDocument(t *testing.T, dbc dbctx.Context, userID uuid.UUID, filename string) *domain.StudyDocument {
	t.Helper()
	doc := &domain.StudyDocument{
		ID:         uuid.New(),
		UserID:     userID,
		Filename:   filename,
		MimeType:   "application/pdf",
		StorageKey: "documents/" + filename,
		PageCount:  2,
		PagesText:  datatypes.JSON([]byte(`["page one text","page two text"]`)),
		IsActive:   true,
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func TestStudyDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewStudyDocumentRepo(db, testutil.Logger(t))

	u := seedUser(t, dbc, "docrepo@example.com")

	doc := &domain.StudyDocument{
		ID:         uuid.New(),
		UserID:     u.ID,
		Filename:   "notes.pdf",
		MimeType:   "application/pdf",
		StorageKey: "documents/notes.pdf",
		PageCount:  3,
		IsActive:   true,
	}
	if _, err := repo.Create(dbc, []*domain.StudyDocument{doc}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{doc.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	got, err := repo.GetActiveByUserAndFilename(dbc, u.ID, "notes.pdf")
	if err != nil {
		t.Fatalf("GetActiveByUserAndFilename: %v", err)
	}
	if got.ID != doc.ID {
		t.Fatalf("GetActiveByUserAndFilename id = %s, want %s", got.ID, doc.ID)
	}

	if rows, err := repo.ListActiveByUserID(dbc, u.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListActiveByUserID: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateSummary(dbc, doc.ID, "a summary", datatypes.JSON([]byte(`["osmosis"]`))); err != nil {
		t.Fatalf("UpdateSummary: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{doc.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after summary: err=%v len=%d", err, len(rows))
	}
	if rows[0].Summary != "a summary" {
		t.Fatalf("Summary = %q, want %q", rows[0].Summary, "a summary")
	}

	if err := repo.Deactivate(dbc, doc.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := repo.GetActiveByUserAndFilename(dbc, u.ID, "notes.pdf"); err == nil {
		t.Fatalf("GetActiveByUserAndFilename after deactivate: want error, got nil")
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{doc.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{doc.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs after soft delete: err=%v len=%d", err, len(rows))
	}
}
