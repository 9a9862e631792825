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

func choicesJSON() datatypes.JSON {
	return datatypes.JSON([]byte(`[{"id":"A","text":"one"},{"id":"B","text":"two"},{"id":"C","text":"three"},{"id":"D","text":"four"}]`))
}

func TestMCQQuestionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMCQQuestionRepo(db, testutil.Logger(t))

	u := seedUser(t, dbc, "questionrepo@example.com")
	doc := seedDocument(t, dbc, u.ID, "questions.pdf")

	if n, err := repo.MaxSeqByDocumentID(dbc, doc.ID); err != nil || n != -1 {
		t.Fatalf("MaxSeqByDocumentID empty: err=%v n=%d", err, n)
	}

	q0 := &domain.MCQQuestion{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		Seq:           0,
		PageNumber:    1,
		QuestionText:  "What is osmosis?",
		Choices:       choicesJSON(),
		CorrectAnswer: "B",
		Explanation:   "Diffusion of water across a membrane.",
	}
	q1 := &domain.MCQQuestion{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		Seq:           1,
		PageNumber:    2,
		QuestionText:  "Which organelle makes ATP?",
		Choices:       choicesJSON(),
		CorrectAnswer: "C",
	}
	if _, err := repo.Create(dbc, []*domain.MCQQuestion{q0, q1}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByDocumentAndSeq(dbc, doc.ID, 1)
	if err != nil {
		t.Fatalf("GetByDocumentAndSeq: %v", err)
	}
	if got.ID != q1.ID {
		t.Fatalf("GetByDocumentAndSeq id = %s, want %s", got.ID, q1.ID)
	}
	if _, err := repo.GetByDocumentAndSeq(dbc, doc.ID, 5); err == nil {
		t.Fatalf("GetByDocumentAndSeq out of range: want error, got nil")
	}

	rows, err := repo.ListByDocumentID(dbc, doc.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByDocumentID: err=%v len=%d", err, len(rows))
	}
	if rows[0].Seq != 0 || rows[1].Seq != 1 {
		t.Fatalf("ListByDocumentID order: got seqs %d,%d", rows[0].Seq, rows[1].Seq)
	}

	if n, err := repo.CountByDocumentID(dbc, doc.ID); err != nil || n != 2 {
		t.Fatalf("CountByDocumentID: err=%v n=%d", err, n)
	}
	if n, err := repo.MaxSeqByDocumentID(dbc, doc.ID); err != nil || n != 1 {
		t.Fatalf("MaxSeqByDocumentID: err=%v n=%d", err, n)
	}

	if err := repo.FullDeleteByDocumentIDs(dbc, []uuid.UUID{doc.ID}); err != nil {
		t.Fatalf("FullDeleteByDocumentIDs: %v", err)
	}
	if n, err := repo.CountByDocumentID(dbc, doc.ID); err != nil || n != 0 {
		t.Fatalf("CountByDocumentID after delete: err=%v n=%d", err, n)
	}
}

func TestFlashcardRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	u := seedUser(t, dbc, "flashcardrepo@example.com")
	doc := seedDocument(t, dbc, u.ID, "cards.pdf")

	cards := []*domain.Flashcard{
		{ID: uuid.New(), DocumentID: doc.ID, Seq: 0, PageNumber: 1, Front: "Osmosis", Back: "Water diffusion across a membrane"},
		{ID: uuid.New(), DocumentID: doc.ID, Seq: 1, PageNumber: 2, Front: "Mitochondria", Back: "Makes ATP"},
	}
	if _, err := repo.Create(dbc, cards); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListByDocumentID(dbc, doc.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByDocumentID: err=%v len=%d", err, len(rows))
	}
	if rows[0].Front != "Osmosis" {
		t.Fatalf("ListByDocumentID order: first front = %q", rows[0].Front)
	}

	if n, err := repo.CountByDocumentID(dbc, doc.ID); err != nil || n != 2 {
		t.Fatalf("CountByDocumentID: err=%v n=%d", err, n)
	}

	if err := repo.FullDeleteByDocumentIDs(dbc, []uuid.UUID{doc.ID}); err != nil {
		t.Fatalf("FullDeleteByDocumentIDs: %v", err)
	}
	if n, err := repo.CountByDocumentID(dbc, doc.ID); err != nil || n != 0 {
		t.Fatalf("CountByDocumentID after delete: err=%v n=%d", err, n)
	}
}
