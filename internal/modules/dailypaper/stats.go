package dailypaper

import (
	"sync"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/dedup"
)

// Category is a rejection bucket.
type Category string

const (
	CategoryValidation        Category = "validation"
	CategoryConfidence        Category = "confidence"
	CategorySemanticDuplicate Category = "semanticDuplicate"
	CategoryHashDuplicate     Category = "hashDuplicate"
	CategoryTopicRepetition   Category = "topicRepetition"
	CategorySyllabusMismatch  Category = "syllabusMismatch"
	CategoryFormatMismatch    Category = "formatMismatch"
)

func categoryFor(v dedup.Verdict) Category {
	switch v {
	case dedup.HashDuplicate:
		return CategoryHashDuplicate
	case dedup.SemanticDuplicate:
		return CategorySemanticDuplicate
	default:
		return CategoryTopicRepetition
	}
}

type RejectionCounts struct {
	Validation        int `json:"validation"`
	Confidence        int `json:"confidence"`
	SemanticDuplicate int `json:"semanticDuplicate"`
	HashDuplicate     int `json:"hashDuplicate"`
	TopicRepetition   int `json:"topicRepetition"`
	SyllabusMismatch  int `json:"syllabusMismatch"`
	FormatMismatch    int `json:"formatMismatch"`
}

func (c *RejectionCounts) add(cat Category) {
	switch cat {
	case CategoryValidation:
		c.Validation++
	case CategoryConfidence:
		c.Confidence++
	case CategorySemanticDuplicate:
		c.SemanticDuplicate++
	case CategoryHashDuplicate:
		c.HashDuplicate++
	case CategoryTopicRepetition:
		c.TopicRepetition++
	case CategorySyllabusMismatch:
		c.SyllabusMismatch++
	case CategoryFormatMismatch:
		c.FormatMismatch++
	}
}

func (c RejectionCounts) Total() int {
	return c.Validation + c.Confidence + c.SemanticDuplicate + c.HashDuplicate +
		c.TopicRepetition + c.SyllabusMismatch + c.FormatMismatch
}

// RejectionStats is the run-wide aggregate plus a per-subject breakdown.
type RejectionStats struct {
	RejectionCounts
	BySubject map[catalog.Subject]RejectionCounts `json:"bySubject"`
}

type statsRecorder struct {
	mu        sync.Mutex
	total     RejectionCounts
	bySubject map[catalog.Subject]RejectionCounts
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{bySubject: map[catalog.Subject]RejectionCounts{}}
}

func (s *statsRecorder) record(subject catalog.Subject, cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total.add(cat)
	c := s.bySubject[subject]
	c.add(cat)
	s.bySubject[subject] = c
}

func (s *statsRecorder) snapshot() RejectionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := RejectionStats{RejectionCounts: s.total, BySubject: make(map[catalog.Subject]RejectionCounts, len(s.bySubject))}
	for k, v := range s.bySubject {
		out.BySubject[k] = v
	}
	return out
}
