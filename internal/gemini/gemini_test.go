package gemini

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizePromptCollapsesCarriageReturns(t *testing.T) {
	got := SanitizePrompt("line one\r\nline two\r")
	if strings.Contains(got, "\r") {
		t.Fatalf("carriage returns not removed: %q", got)
	}
}

func TestSanitizePromptShortPromptUnchanged(t *testing.T) {
	in := "Summarize this article."
	if got := SanitizePrompt(in); got != in {
		t.Fatalf("short prompt should be unchanged, got %q", got)
	}
}

func TestSanitizePromptTruncatesLongPrompt(t *testing.T) {
	in := strings.Repeat("A sentence about science. ", 2000)
	got := SanitizePrompt(in)

	if !strings.HasSuffix(got, "[TRUNCATED]") {
		t.Fatal("expected truncation marker")
	}
	if utf8.RuneCountInString(got) > maxPromptRunes+len("\n[TRUNCATED]") {
		t.Fatalf("prompt not bounded: %d runes", utf8.RuneCountInString(got))
	}
	// Cut should land on a sentence boundary.
	body := strings.TrimSuffix(got, "\n[TRUNCATED]")
	if !strings.HasSuffix(body, ".") {
		t.Fatalf("expected sentence-boundary cut, got tail %q", body[len(body)-20:])
	}
}
