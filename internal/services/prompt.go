package services

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

const (
	// maxPageChars caps how much page text goes into one generation call.
	maxPageChars = 4000

	defaultQuestionsPerPage = 3
	minQuestionsPerPage     = 1
	maxQuestionsPerPage     = 10

	defaultFlashcardsPerPage = 5
)

const defaultMCQSystem = `You are an expert educator creating multiple-choice questions from study material. Always respond with a single JSON object and nothing else.`

const defaultMCQUser = `Create exactly %d multiple-choice questions from the following study material.

Rules:
- Each question must have exactly 4 choices with ids "A", "B", "C", "D".
- "correct_answer" must be the id of the correct choice.
- Include a short "explanation" for the correct answer.
- Questions must be answerable from the material alone.

Respond with a JSON object of this shape:
{"questions":[{"question":"...","choices":[{"id":"A","text":"..."},{"id":"B","text":"..."},{"id":"C","text":"..."},{"id":"D","text":"..."}],"correct_answer":"A","explanation":"..."}]}

Study material:
%s`

const defaultFlashcardSystem = `You are an expert educator creating study flashcards. Always respond with a single JSON object and nothing else.`

const defaultFlashcardUser = `Create exactly %d flashcards from the following study material. Each flashcard has a "front" (a term or question), a "back" (the definition or answer), and an "explanation" giving extra context for the answer.

Respond with a JSON object of this shape:
{"flashcards":[{"front":"...","back":"...","explanation":"..."}]}

Study material:
%s`

const defaultSummarySystem = `You are an expert at summarizing study material. Always respond with a single JSON object and nothing else.`

const defaultSummaryUser = `Summarize the following study material in 3-5 sentences and list its key concepts.

Respond with a JSON object of this shape:
{"summary":"...","key_concepts":["...","..."]}

Study material:
%s`

// promptTemplates is the optional YAML override file shape. Any empty field
// keeps its default.
type promptTemplates struct {
	MCQSystem       string `yaml:"mcq_system"`
	MCQUser         string `yaml:"mcq_user"`
	FlashcardSystem string `yaml:"flashcard_system"`
	FlashcardUser   string `yaml:"flashcard_user"`
	SummarySystem   string `yaml:"summary_system"`
	SummaryUser     string `yaml:"summary_user"`
}

// PromptBuilder renders generation prompts. Templates can be overridden via
// a YAML file named by PROMPT_TEMPLATES_PATH; user templates take the
// question count (where applicable) and the material text as fmt verbs.
type PromptBuilder struct {
	t promptTemplates
}

func NewPromptBuilder(log *logger.Logger) *PromptBuilder {
	pb := &PromptBuilder{t: promptTemplates{
		MCQSystem:       defaultMCQSystem,
		MCQUser:         defaultMCQUser,
		FlashcardSystem: defaultFlashcardSystem,
		FlashcardUser:   defaultFlashcardUser,
		SummarySystem:   defaultSummarySystem,
		SummaryUser:     defaultSummaryUser,
	}}

	path := strings.TrimSpace(os.Getenv("PROMPT_TEMPLATES_PATH"))
	if path == "" {
		return pb
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read prompt templates, using defaults", "path", path, "error", err)
		return pb
	}
	var override promptTemplates
	if err := yaml.Unmarshal(raw, &override); err != nil {
		log.Warn("Failed to parse prompt templates, using defaults", "path", path, "error", err)
		return pb
	}

	if override.MCQSystem != "" {
		pb.t.MCQSystem = override.MCQSystem
	}
	if override.MCQUser != "" {
		pb.t.MCQUser = override.MCQUser
	}
	if override.FlashcardSystem != "" {
		pb.t.FlashcardSystem = override.FlashcardSystem
	}
	if override.FlashcardUser != "" {
		pb.t.FlashcardUser = override.FlashcardUser
	}
	if override.SummarySystem != "" {
		pb.t.SummarySystem = override.SummarySystem
	}
	if override.SummaryUser != "" {
		pb.t.SummaryUser = override.SummaryUser
	}
	log.Info("Loaded prompt template overrides", "path", path)
	return pb
}

// ClampQuestionCount normalizes a requested per-page question count.
func ClampQuestionCount(n int) int {
	if n <= 0 {
		return defaultQuestionsPerPage
	}
	if n < minQuestionsPerPage {
		return minQuestionsPerPage
	}
	if n > maxQuestionsPerPage {
		return maxQuestionsPerPage
	}
	return n
}

// truncateText cuts s to at most limit bytes without splitting a rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func (pb *PromptBuilder) MCQPrompt(pageText string, numQuestions int) (system, user string) {
	n := ClampQuestionCount(numQuestions)
	return pb.t.MCQSystem, fmt.Sprintf(pb.t.MCQUser, n, truncateText(pageText, maxPageChars))
}

func (pb *PromptBuilder) FlashcardPrompt(pageText string, numCards int) (system, user string) {
	if numCards <= 0 {
		numCards = defaultFlashcardsPerPage
	}
	return pb.t.FlashcardSystem, fmt.Sprintf(pb.t.FlashcardUser, numCards, truncateText(pageText, maxPageChars))
}

func (pb *PromptBuilder) SummaryPrompt(text string) (system, user string) {
	return pb.t.SummarySystem, fmt.Sprintf(pb.t.SummaryUser, truncateText(text, 3*maxPageChars))
}
