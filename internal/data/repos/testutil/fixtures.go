package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"gorm.io/gorm"
)

// NewQuestion returns an unsaved question; n makes its text and hash unique.
func NewQuestion(subject, date string, n int) *types.Question {
	return &types.Question{
		ID:               uuid.New(),
		Subject:          subject,
		Topic:            "Optics",
		SyllabusUnit:     "Optics",
		ConceptTag:       fmt.Sprintf("concept %d", n),
		QuestionFormat:   "Single Correct",
		SourceType:       "Conceptual",
		QuestionText:     fmt.Sprintf("question text %d", n),
		OptionA:          "option a",
		OptionB:          "option b",
		OptionC:          "option c",
		OptionD:          "option d",
		CorrectOption:    "A",
		Explanation:      "explanation",
		Difficulty:       "moderate",
		ProbabilityScore: 0.5,
		ConfidenceScore:  0.9,
		VerificationFlag: "Estimated",
		HashSignature:    fmt.Sprintf("%064d", n),
		DateGenerated:    date,
	}
}

// SeedPaper writes a paper for date holding qs in order.
func SeedPaper(tb testing.TB, ctx context.Context, tx *gorm.DB, date string, qs ...*types.Question) *types.DailyPaper {
	tb.Helper()
	p := &types.DailyPaper{ID: uuid.New(), PaperDate: date}
	for _, q := range qs {
		switch q.Subject {
		case "Physics":
			p.PhysicsCount++
		case "Chemistry":
			p.ChemistryCount++
		case "Biology":
			p.BiologyCount++
		}
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed paper: %v", err)
	}
	if len(qs) == 0 {
		return p
	}
	if err := tx.WithContext(ctx).Create(&qs).Error; err != nil {
		tb.Fatalf("seed questions: %v", err)
	}
	for i, q := range qs {
		link := &types.DailyPaperQuestion{PaperID: p.ID, QuestionOrder: i + 1, QuestionID: q.ID}
		if err := tx.WithContext(ctx).Create(link).Error; err != nil {
			tb.Fatalf("seed link: %v", err)
		}
	}
	return p
}
