package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const duplicateStatsWindowDays = 30

type AdminService interface {
	// TopicWeights returns the effective weights per subject: every catalogue
	// topic, with 1 where no weight is stored.
	TopicWeights(ctx context.Context) (map[string]map[string]float64, error)
	UpdateTopicWeights(ctx context.Context, subject string, weights map[string]float64) (map[string]float64, error)
	ListLogs(ctx context.Context, limit int) ([]*types.GenerationLog, error)
	DuplicateStats(ctx context.Context, today string) ([]types.DuplicateStat, error)
}

type adminService struct {
	catalog   *catalog.Catalog
	weights   repos.TopicWeightRepo
	logs      repos.GenerationLogRepo
	questions repos.QuestionRepo
	log       *logger.Logger
}

func NewAdminService(cat *catalog.Catalog, weights repos.TopicWeightRepo, logs repos.GenerationLogRepo, questions repos.QuestionRepo, log *logger.Logger) AdminService {
	return &adminService{
		catalog:   cat,
		weights:   weights,
		logs:      logs,
		questions: questions,
		log:       log.With("service", "AdminService"),
	}
}

func (s *adminService) TopicWeights(ctx context.Context) (map[string]map[string]float64, error) {
	rows, err := s.weights.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	stored := map[string]map[string]float64{}
	for _, row := range rows {
		var m map[string]float64
		if err := json.Unmarshal(row.Weights, &m); err != nil {
			s.log.Warn("Unreadable topic weights", "subject", row.Subject, "error", err)
			continue
		}
		stored[row.Subject] = m
	}

	out := make(map[string]map[string]float64, len(catalog.Subjects))
	for _, subject := range catalog.Subjects {
		effective := map[string]float64{}
		for _, topic := range s.catalog.Topics(subject) {
			w, ok := stored[string(subject)][topic]
			if !ok {
				w = 1
			}
			effective[topic] = w
		}
		out[string(subject)] = effective
	}
	return out, nil
}

func (s *adminService) UpdateTopicWeights(ctx context.Context, subject string, weights map[string]float64) (map[string]float64, error) {
	subj, ok := catalog.ParseSubject(subject)
	if !ok {
		return nil, fmt.Errorf("%w: unknown subject %q", dailypaper.ErrInvalidInput, subject)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: weights must not be empty", dailypaper.ErrInvalidInput)
	}
	for topic, w := range weights {
		if !s.catalog.IsAllowedTopic(subj, topic) {
			return nil, fmt.Errorf("%w: topic %q is not in the %s catalogue", dailypaper.ErrInvalidInput, topic, subj)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, fmt.Errorf("%w: weight for %q must be a positive number", dailypaper.ErrInvalidInput, topic)
		}
	}
	raw, err := json.Marshal(weights)
	if err != nil {
		return nil, err
	}
	row := &types.TopicWeight{Subject: string(subj), Weights: datatypes.JSON(raw)}
	if err := s.weights.Upsert(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, err
	}
	s.log.Info("Topic weights updated", "subject", subj, "topics", len(weights))
	return weights, nil
}

func (s *adminService) ListLogs(ctx context.Context, limit int) ([]*types.GenerationLog, error) {
	return s.logs.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func (s *adminService) DuplicateStats(ctx context.Context, today string) ([]types.DuplicateStat, error) {
	day, err := time.Parse(dailypaper.DateLayout, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dailypaper.ErrInvalidInput, err)
	}
	since := day.AddDate(0, 0, -duplicateStatsWindowDays).Format(dailypaper.DateLayout)
	return s.questions.DuplicateStats(dbctx.Context{Ctx: ctx}, since)
}
