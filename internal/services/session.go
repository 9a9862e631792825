package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
	"github.com/studybuddy/studybuddy-backend/internal/quiz"
)

// SessionView is a session snapshot plus the current question, ready for
// rendering. Question is nil once the session is complete.
type SessionView struct {
	Session  *quiz.Session `json:"session"`
	Question *QuestionView `json:"question,omitempty"`
}

type SessionService interface {
	Start(ctx context.Context, userID uuid.UUID, filename string) (*SessionView, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
	Select(ctx context.Context, userID, sessionID uuid.UUID, choice string) (*SessionView, error)
	Submit(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
	Next(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
	Prev(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
	Finish(ctx context.Context, userID, sessionID uuid.UUID) (*quiz.Stats, error)
	Restart(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
}

type sessionService struct {
	log       *logger.Logger
	store     quiz.Store
	quizzes   QuizService
	documents DocumentService
	progress  ProgressService
}

func NewSessionService(
	log *logger.Logger,
	store quiz.Store,
	quizzes QuizService,
	documents DocumentService,
	progress ProgressService,
) SessionService {
	return &sessionService{
		log:       log.With("service", "SessionService"),
		store:     store,
		quizzes:   quizzes,
		documents: documents,
		progress:  progress,
	}
}

func (ss *sessionService) Start(ctx context.Context, userID uuid.UUID, filename string) (*SessionView, error) {
	doc, err := ss.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}

	// the stored question count is authoritative, never a client-cached one
	total, err := ss.quizzes.QuestionCount(ctx, userID, filename)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed,
			fmt.Errorf("document %q has no generated questions", filename))
	}

	session, err := quiz.NewSession(userID, doc.ID, int(total))
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed, err)
	}
	if err := ss.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	ss.log.Info("Quiz session started",
		"user_id", userID.String(),
		"session_id", session.ID.String(),
		"total", total,
	)
	return ss.view(ctx, userID, session)
}

func (ss *sessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return ss.view(ctx, userID, session)
}

func (ss *sessionService) Select(ctx context.Context, userID, sessionID uuid.UUID, choice string) (*SessionView, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Select(choice); err != nil {
		return nil, mapSessionErr(err)
	}
	if err := ss.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return ss.view(ctx, userID, session)
}

// Submit grades the pending selection server-side, advances the session to
// AnswerRevealed, and records the attempt to progress tracking without
// blocking the quiz flow.
func (ss *sessionService) Submit(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != quiz.StateAnswerPending {
		return nil, mapSessionErr(quiz.ErrInvalidTransition)
	}

	question, err := ss.quizzes.QuestionAt(ctx, userID, session.DocumentID, session.Index)
	if err != nil {
		return nil, err
	}

	result, err := ss.quizzes.ValidateAnswer(ctx, userID, question.ID, session.SelectedChoice)
	if err != nil {
		return nil, err
	}

	selected := session.SelectedChoice
	if err := session.Submit(session.Index, quiz.Result{
		QuestionID:    result.QuestionID,
		IsCorrect:     result.IsCorrect,
		CorrectAnswer: result.CorrectAnswer,
		Explanation:   result.Explanation,
	}); err != nil {
		return nil, mapSessionErr(err)
	}
	if err := ss.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	// fire and forget: a failed progress write never blocks the quiz
	go ss.recordAttempt(userID, session.DocumentID, result.QuestionID, selected, result.IsCorrect)

	return ss.view(ctx, userID, session)
}

func (ss *sessionService) recordAttempt(userID, documentID, questionID uuid.UUID, selectedChoice string, isCorrect bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := ss.progress.Record(ctx, userID, RecordInput{
		DocumentID:     documentID,
		QuestionID:     questionID,
		SelectedChoice: selectedChoice,
		IsCorrect:      isCorrect,
	}); err != nil {
		ss.log.Warn("Failed to record attempt",
			"user_id", userID.String(),
			"question_id", questionID.String(),
			"error", err,
		)
	}
}

func (ss *sessionService) Next(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	return ss.navigate(ctx, userID, sessionID, (*quiz.Session).Next)
}

func (ss *sessionService) Prev(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	return ss.navigate(ctx, userID, sessionID, (*quiz.Session).Prev)
}

func (ss *sessionService) navigate(ctx context.Context, userID, sessionID uuid.UUID, move func(*quiz.Session) error) (*SessionView, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := move(session); err != nil {
		return nil, mapSessionErr(err)
	}
	if err := ss.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return ss.view(ctx, userID, session)
}

func (ss *sessionService) Finish(ctx context.Context, userID, sessionID uuid.UUID) (*quiz.Stats, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	stats, err := session.Finish()
	if err != nil {
		return nil, mapSessionErr(err)
	}
	if err := ss.store.Delete(ctx, sessionID); err != nil {
		ss.log.Warn("Failed to delete finished session", "session_id", sessionID.String(), "error", err)
	}
	ss.log.Info("Quiz session finished",
		"user_id", userID.String(),
		"session_id", sessionID.String(),
		"attempted", stats.Attempted,
		"correct", stats.Correct,
	)
	return &stats, nil
}

// Restart throws the session away and starts a fresh one for the same
// document. Recorded progress attempts are kept.
func (ss *sessionService) Restart(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	session, err := ss.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	doc, err := ss.documents.GetOwned(ctx, userID, session.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := ss.store.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return ss.Start(ctx, userID, doc.Filename)
}

func (ss *sessionService) load(ctx context.Context, userID, sessionID uuid.UUID) (*quiz.Session, error) {
	session, err := ss.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, quiz.ErrSessionNotFound) {
			return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("session not found"))
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("session not found"))
	}
	return session, nil
}

func (ss *sessionService) view(ctx context.Context, userID uuid.UUID, session *quiz.Session) (*SessionView, error) {
	view := &SessionView{Session: session}
	if session.State == quiz.StateComplete {
		return view, nil
	}

	question, err := ss.quizzes.QuestionAt(ctx, userID, session.DocumentID, session.Index)
	if err != nil {
		return nil, err
	}
	view.Question = question
	return view, nil
}

func mapSessionErr(err error) error {
	switch {
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		return apierr.New(http.StatusBadRequest, apierr.CodeIndexOutOfRange, err)
	case errors.Is(err, quiz.ErrInvalidTransition), errors.Is(err, quiz.ErrAlreadySubmitted):
		return apierr.New(http.StatusConflict, apierr.CodeInvalidTransition, err)
	default:
		return err
	}
}
