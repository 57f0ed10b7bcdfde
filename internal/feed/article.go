package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is one retrieved feed item, normalized at the fetch boundary.
type Article struct {
	Title       string
	Link        string
	Content     string
	Source      string
	Category    string
	Published   string // origin-supplied date string, not parsed at fetch time
	Summary     string // empty until summarization completes
	ContentHash string
	FetchDate   time.Time
}

// ContentHash fingerprints an article by title and content. Identical
// (title, content) pairs always map to the same hash, so a republished
// story short-circuits summarization.
func ContentHash(title, content string) string {
	h := sha256.New()
	h.Write([]byte(title + content))
	return hex.EncodeToString(h.Sum(nil))
}
