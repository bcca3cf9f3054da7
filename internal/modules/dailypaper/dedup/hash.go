package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
)

const hashSeparator = "||"

// NormalizeText lower-cases and collapses whitespace.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Signature is the exact-duplicate identity of a question: SHA-256 over
// subject, topic, normalized text and the four trimmed options, in that order.
func Signature(q *candidate.Question) string {
	base := strings.Join([]string{
		q.Subject,
		q.Topic,
		NormalizeText(q.QuestionText),
		strings.TrimSpace(q.Options.A),
		strings.TrimSpace(q.Options.B),
		strings.TrimSpace(q.Options.C),
		strings.TrimSpace(q.Options.D),
	}, hashSeparator)
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}
