package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

func promptLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestClampQuestionCount(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, defaultQuestionsPerPage},
		{-5, defaultQuestionsPerPage},
		{1, 1},
		{7, 7},
		{10, 10},
		{25, maxQuestionsPerPage},
	}
	for _, tc := range cases {
		if got := ClampQuestionCount(tc.in); got != tc.want {
			t.Fatalf("ClampQuestionCount(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMCQPromptTruncatesPageText(t *testing.T) {
	t.Setenv("PROMPT_TEMPLATES_PATH", "")
	pb := NewPromptBuilder(promptLogger(t))

	long := strings.Repeat("x", maxPageChars+500)
	system, user := pb.MCQPrompt(long, 3)
	if system != defaultMCQSystem {
		t.Fatalf("system prompt changed unexpectedly")
	}
	if strings.Count(user, "x") != maxPageChars {
		t.Fatalf("page text not truncated to %d chars", maxPageChars)
	}
	if !strings.Contains(user, "exactly 3 multiple-choice questions") {
		t.Fatalf("question count not rendered: %q", user[:80])
	}
}

func TestPromptTemplateOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	override := "mcq_system: custom system prompt\nmcq_user: \"n=%d material=%s\"\n"
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	t.Setenv("PROMPT_TEMPLATES_PATH", path)

	pb := NewPromptBuilder(promptLogger(t))
	system, user := pb.MCQPrompt("cells", 2)
	if system != "custom system prompt" {
		t.Fatalf("system = %q", system)
	}
	if user != "n=2 material=cells" {
		t.Fatalf("user = %q", user)
	}

	// Unset fields keep their defaults.
	fsys, _ := pb.FlashcardPrompt("cells", 1)
	if fsys != defaultFlashcardSystem {
		t.Fatalf("flashcard system lost its default")
	}
}

func TestPromptTemplatesBadFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	if err := os.WriteFile(path, []byte("\tnot yaml"), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	t.Setenv("PROMPT_TEMPLATES_PATH", path)

	pb := NewPromptBuilder(promptLogger(t))
	system, _ := pb.MCQPrompt("cells", 3)
	if system != defaultMCQSystem {
		t.Fatalf("bad template file should fall back to defaults")
	}
}

func TestFlashcardPromptDefaultCount(t *testing.T) {
	t.Setenv("PROMPT_TEMPLATES_PATH", "")
	pb := NewPromptBuilder(promptLogger(t))

	_, user := pb.FlashcardPrompt("mitochondria", 0)
	if !strings.Contains(user, "exactly 5 flashcards") {
		t.Fatalf("default card count not rendered: %q", user[:80])
	}
}

func TestTruncateTextKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; a byte-wise cut at 2 would split it
	if got := truncateText("héllo", 2); got != "h" {
		t.Fatalf("truncateText = %q, want %q", got, "h")
	}
	if got := truncateText("héllo", 3); got != "hé" {
		t.Fatalf("truncateText = %q, want %q", got, "hé")
	}

	long := strings.Repeat("日", maxPageChars)
	cut := truncateText(long, maxPageChars)
	if !utf8.ValidString(cut) {
		t.Fatalf("truncated text is not valid UTF-8")
	}
	if len(cut) > maxPageChars {
		t.Fatalf("len = %d, want <= %d", len(cut), maxPageChars)
	}
}
