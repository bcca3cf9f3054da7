package dailypaper

import (
	"context"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/dedup"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
)

// Request is what a candidate source receives for one slot attempt.
type Request struct {
	Subject        string                  `json:"subject"`
	Topics         []string                `json:"topics"`
	TopicWeights   []planner.WeightedTopic `json:"topicWeights"`
	Difficulty     string                  `json:"difficulty"`
	QuestionFormat string                  `json:"questionFormat"`
	SyllabusUnits  []string                `json:"syllabusUnits"`
	ExcludeHashes  []string                `json:"excludeHashes"`
}

// Source proposes candidates. A malformed payload must be reported as a
// *candidate.DecodeError; any other error aborts the run.
type Source interface {
	Generate(ctx context.Context, req Request) (*candidate.Response, error)
}

// Locker is a TTL lock keyed by string. Release is advisory: it deletes the
// key only while token still holds it, and callers ignore its error because
// expiry alone guarantees progress.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type HashCache interface {
	dedup.HashCache
	Remember(ctx context.Context, hashes []string, ttl time.Duration) error
}

type PaperCache interface {
	Invalidate(ctx context.Context, date string) error
}

// Store is the relational side of a run.
type Store interface {
	PaperExists(ctx context.Context, date string) (bool, error)
	HasSuccessLog(ctx context.Context, date string) (bool, error)
	// LoadHistory returns the 30-day hashes and texts and the 7-day concept
	// counts that precede date.
	LoadHistory(ctx context.Context, date string) (dedup.History, error)
	TopicWeights(ctx context.Context) (map[catalog.Subject]map[string]float64, error)
	// CommitPaper writes the paper, its questions and join rows in one
	// transaction. It returns ErrPaperExists if the date was taken meanwhile.
	CommitPaper(ctx context.Context, draft PaperDraft) (string, error)
	AppendLog(ctx context.Context, entry LogEntry) error
}

// AcceptedQuestion is a candidate that passed every check, with the slot it fills.
type AcceptedQuestion struct {
	Subject          catalog.Subject
	Slot             int
	Question         candidate.Question
	HashSignature    string
	ConfidenceScore  float64
	VerificationFlag string
}

// PaperDraft is a fully generated paper waiting to be committed. Questions
// are in presentation order.
type PaperDraft struct {
	Date      string
	Counts    map[catalog.Subject]int
	Questions []AcceptedQuestion
}

type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailed  LogStatus = "failed"
)

type LogEntry struct {
	RunDate     string
	Status      LogStatus
	TriggeredBy string
	Message     string
	Metadata    map[string]any
}
