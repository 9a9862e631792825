package quiz

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// State is the quiz session workflow state. A session walks one question at
// a time: the current question is shown (InProgress), a choice is selected
// (AnswerPending), the server grades it (AnswerRevealed), then navigation
// moves to another index or the session finishes (Complete).
type State string

const (
	StateInProgress     State = "in_progress"
	StateAnswerPending  State = "answer_pending"
	StateAnswerRevealed State = "answer_revealed"
	StateComplete       State = "complete"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrIndexOutOfRange   = errors.New("question index out of range")
	ErrAlreadySubmitted  = errors.New("answer already submitted for this question")
)

// Result is the server-side grading outcome for one submission.
type Result struct {
	QuestionID    uuid.UUID `json:"question_id"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
}

// Attempt is one graded answer recorded inside the session. The session's
// final stats come from this list, independent of persisted progress rows.
type Attempt struct {
	QuestionID     uuid.UUID `json:"question_id"`
	Seq            int       `json:"seq"`
	SelectedChoice string    `json:"selected_choice"`
	IsCorrect      bool      `json:"is_correct"`
}

// Session is serialized as JSON only at the store boundary.
type Session struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	DocumentID uuid.UUID `json:"document_id"`

	Total int   `json:"total"`
	Index int   `json:"index"`
	State State `json:"state"`

	// Transient per-question state, reset on navigation.
	SelectedChoice string  `json:"selected_choice,omitempty"`
	LastResult     *Result `json:"last_result,omitempty"`

	Attempts []Attempt `json:"attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats are computed from the session's own attempt list.
type Stats struct {
	Total     int     `json:"total_questions"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

func NewSession(userID, documentID uuid.UUID, total int) (*Session, error) {
	if total <= 0 {
		return nil, errors.New("session needs at least one question")
	}
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.New(),
		UserID:     userID,
		DocumentID: documentID,
		Total:      total,
		Index:      0,
		State:      StateInProgress,
		Attempts:   []Attempt{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Select records a choice for the current question. Reselecting while still
// pending is allowed; selecting after the answer is revealed is not.
func (s *Session) Select(choice string) error {
	switch s.State {
	case StateInProgress, StateAnswerPending:
	default:
		return ErrInvalidTransition
	}
	if choice == "" {
		return errors.New("empty choice")
	}
	s.SelectedChoice = choice
	s.State = StateAnswerPending
	s.touch()
	return nil
}

// Submit records the server-graded result for the pending selection. A
// second submit for the same question index is rejected.
func (s *Session) Submit(seq int, res Result) error {
	switch s.State {
	case StateAnswerPending:
	case StateAnswerRevealed:
		return ErrAlreadySubmitted
	default:
		return ErrInvalidTransition
	}
	if seq != s.Index {
		return ErrInvalidTransition
	}

	s.Attempts = append(s.Attempts, Attempt{
		QuestionID:     res.QuestionID,
		Seq:            seq,
		SelectedChoice: s.SelectedChoice,
		IsCorrect:      res.IsCorrect,
	})
	s.LastResult = &res
	s.State = StateAnswerRevealed
	s.touch()
	return nil
}

func (s *Session) Next() error { return s.seek(s.Index + 1) }
func (s *Session) Prev() error { return s.seek(s.Index - 1) }

// seek moves to another question index and resets transient per-question
// state. Recorded attempts are kept.
func (s *Session) seek(index int) error {
	if s.State == StateComplete {
		return ErrInvalidTransition
	}
	if index < 0 || index >= s.Total {
		return ErrIndexOutOfRange
	}
	s.Index = index
	s.SelectedChoice = ""
	s.LastResult = nil
	s.State = StateInProgress
	s.touch()
	return nil
}

// Finish closes the session and returns its stats. Finishing before every
// question is answered is allowed; unanswered questions count as unattempted.
func (s *Session) Finish() (Stats, error) {
	if s.State == StateComplete {
		return Stats{}, ErrInvalidTransition
	}
	s.State = StateComplete
	s.SelectedChoice = ""
	s.LastResult = nil
	s.touch()
	return s.Stats(), nil
}

func (s *Session) Stats() Stats {
	// latest attempt per question wins when a question was answered twice
	// after navigating back
	latest := map[uuid.UUID]bool{}
	order := []uuid.UUID{}
	for _, a := range s.Attempts {
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a.IsCorrect
	}

	st := Stats{Total: s.Total, Attempted: len(order)}
	for _, qid := range order {
		if latest[qid] {
			st.Correct++
		}
	}
	st.Incorrect = st.Attempted - st.Correct
	if st.Attempted > 0 {
		st.Accuracy = math.Round(float64(st.Correct)/float64(st.Attempted)*10000) / 100
	}
	return st
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }
