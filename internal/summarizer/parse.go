package summarizer

import (
	"fmt"
	"strings"
	"unicode"
)

// parseState tracks the line-based state machine over a batch response.
type parseState int

const (
	betweenItems parseState = iota
	accumulatingItem
)

// ParseBatchSummaries splits a numbered batch response into one string per
// item. A line starting with digits followed by a separator ('.', ')' or
// ':') opens a new item; lines without a marker continue the current item,
// which handles summaries that wrap across lines. A non-empty line seen
// before any marker matches no recognized grammar and is reported as a
// parse anomaly so the caller can fall back instead of guessing.
func ParseBatchSummaries(text string) ([]string, error) {
	var (
		summaries []string
		current   strings.Builder
		state     = betweenItems
	)

	flush := func() {
		if current.Len() > 0 {
			summaries = append(summaries, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if body, ok := stripItemMarker(line); ok {
			flush()
			state = accumulatingItem
			current.WriteString(body)
			continue
		}

		if state == betweenItems {
			return nil, fmt.Errorf("unrecognized line before first numbered item: %q", truncate(line, 60))
		}

		current.WriteString(" ")
		current.WriteString(line)
	}
	flush()

	return summaries, nil
}

// stripItemMarker detects a leading-number marker ("1.", "12)", "3:") and
// returns the rest of the line.
func stripItemMarker(line string) (string, bool) {
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i == 0 || i >= len(line) {
		return "", false
	}

	switch line[i] {
	case '.', ')', ':':
		return strings.TrimSpace(line[i+1:]), true
	default:
		return "", false
	}
}
