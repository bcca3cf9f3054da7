package dailypaper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/dedup"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	historyWindowDays = 30
	recencyWindowDays = 7

	pgUniqueViolation = "23505"
)

type GormStoreRepos struct {
	Questions repos.QuestionRepo
	Papers    repos.DailyPaperRepo
	Logs      repos.GenerationLogRepo
	Weights   repos.TopicWeightRepo
}

// GormStore is the relational Store over the paper repos.
type GormStore struct {
	db    *gorm.DB
	repos GormStoreRepos
	log   *logger.Logger
}

func NewGormStore(db *gorm.DB, r GormStoreRepos, baseLog *logger.Logger) *GormStore {
	return &GormStore{db: db, repos: r, log: baseLog.With("service", "DailyPaperStore")}
}

func (s *GormStore) PaperExists(ctx context.Context, date string) (bool, error) {
	return s.repos.Papers.ExistsByDate(dbctx.Context{Ctx: ctx}, date)
}

func (s *GormStore) HasSuccessLog(ctx context.Context, date string) (bool, error) {
	return s.repos.Logs.HasSuccess(dbctx.Context{Ctx: ctx}, date)
}

func (s *GormStore) LoadHistory(ctx context.Context, date string) (dedup.History, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return dedup.History{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	from := day.AddDate(0, 0, -historyWindowDays).Format(DateLayout)
	recentFrom := day.AddDate(0, 0, -recencyWindowDays).Format(DateLayout)

	// Later dates stay in the window so regenerating a past date still sees
	// papers generated after it.
	rows, err := s.repos.Questions.ListGeneratedSince(dbctx.Context{Ctx: ctx}, from, date)
	if err != nil {
		return dedup.History{}, err
	}
	h := dedup.History{
		Hashes:        make([]string, 0, len(rows)),
		Texts:         make([]string, 0, len(rows)),
		ConceptCounts: map[dedup.ConceptKey]int{},
	}
	for _, q := range rows {
		h.Hashes = append(h.Hashes, q.HashSignature)
		h.Texts = append(h.Texts, q.QuestionText)
		if q.DateGenerated >= recentFrom {
			h.ConceptCounts[dedup.ConceptKey{Subject: q.Subject, Topic: q.Topic, ConceptTag: q.ConceptTag}]++
		}
	}
	return h, nil
}

// TopicWeights decodes the stored weight maps. Unparseable rows are skipped
// with a warning so one bad admin edit cannot block generation.
func (s *GormStore) TopicWeights(ctx context.Context) (map[catalog.Subject]map[string]float64, error) {
	rows, err := s.repos.Weights.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	out := make(map[catalog.Subject]map[string]float64, len(rows))
	for _, row := range rows {
		subject, ok := catalog.ParseSubject(row.Subject)
		if !ok {
			continue
		}
		var weights map[string]float64
		if err := json.Unmarshal(row.Weights, &weights); err != nil {
			s.log.Warn("Skipping unreadable topic weights", "subject", row.Subject, "error", err)
			continue
		}
		out[subject] = weights
	}
	return out, nil
}

func (s *GormStore) CommitPaper(ctx context.Context, draft PaperDraft) (string, error) {
	paper := &types.DailyPaper{
		ID:             uuid.New(),
		PaperDate:      draft.Date,
		PhysicsCount:   draft.Counts[catalog.Physics],
		ChemistryCount: draft.Counts[catalog.Chemistry],
		BiologyCount:   draft.Counts[catalog.Biology],
	}
	questions := make([]*types.Question, 0, len(draft.Questions))
	links := make([]*types.DailyPaperQuestion, 0, len(draft.Questions))
	for i, aq := range draft.Questions {
		q := aq.Question
		row := &types.Question{
			ID:               uuid.New(),
			Subject:          string(aq.Subject),
			Topic:            q.Topic,
			SyllabusUnit:     q.SyllabusUnit,
			ConceptTag:       q.ConceptTag,
			QuestionFormat:   q.QuestionFormat,
			SourceType:       q.SourceType,
			QuestionText:     q.QuestionText,
			OptionA:          q.Options.A,
			OptionB:          q.Options.B,
			OptionC:          q.Options.C,
			OptionD:          q.Options.D,
			CorrectOption:    q.CorrectOption,
			Explanation:      q.Explanation,
			Difficulty:       q.Difficulty,
			ProbabilityScore: q.ProbabilityScore.Value,
			ConfidenceScore:  aq.ConfidenceScore,
			VerificationFlag: aq.VerificationFlag,
			HashSignature:    aq.HashSignature,
			DateGenerated:    draft.Date,
		}
		questions = append(questions, row)
		links = append(links, &types.DailyPaperQuestion{PaperID: paper.ID, QuestionOrder: i + 1, QuestionID: row.ID})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.repos.Papers.Create(dbc, paper); err != nil {
			return fmt.Errorf("insert paper: %w", err)
		}
		if err := s.repos.Questions.Create(dbc, questions); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		if err := s.repos.Papers.CreateLinks(dbc, links); err != nil {
			return fmt.Errorf("insert paper questions: %w", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %v", ErrPaperExists, err)
		}
		return "", err
	}
	return paper.ID.String(), nil
}

func (s *GormStore) AppendLog(ctx context.Context, entry LogEntry) error {
	meta, err := json.Marshal(sanitizeMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("encode log metadata: %w", err)
	}
	row := &types.GenerationLog{
		RunDate:     entry.RunDate,
		Status:      string(entry.Status),
		TriggeredBy: entry.TriggeredBy,
		Message:     entry.Message,
		Metadata:    datatypes.JSON(meta),
	}
	return s.repos.Logs.Create(dbctx.Context{Ctx: ctx}, row)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// sanitizeMetadata drops NaN and Inf floats, which json.Marshal rejects.
func sanitizeMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[k] = v
	}
	return out
}
