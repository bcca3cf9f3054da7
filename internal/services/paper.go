package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/dbctx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const PaperCacheTTL = 24 * time.Hour

var ErrPaperNotFound = errors.New("paper not found")

// PaperReadCache is the payload cache for a day's paper.
type PaperReadCache interface {
	Get(ctx context.Context, date string, dst any) (bool, error)
	Set(ctx context.Context, date string, v any, ttl time.Duration) error
}

type PaperService interface {
	GetPaper(ctx context.Context, date string) (*types.PaperWithQuestions, error)
}

type paperService struct {
	papers repos.DailyPaperRepo
	cache  PaperReadCache
	log    *logger.Logger
}

func NewPaperService(papers repos.DailyPaperRepo, cache PaperReadCache, log *logger.Logger) PaperService {
	return &paperService{
		papers: papers,
		cache:  cache,
		log:    log.With("service", "PaperService"),
	}
}

// GetPaper reads through the cache. Cache errors are logged and the
// database answer is served.
func (s *paperService) GetPaper(ctx context.Context, date string) (*types.PaperWithQuestions, error) {
	if _, err := time.Parse(dailypaper.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", dailypaper.ErrInvalidInput, date)
	}
	if s.cache != nil {
		var cached types.PaperWithQuestions
		hit, err := s.cache.Get(ctx, date, &cached)
		if err != nil {
			s.log.Warn("Paper cache read failed", "date", date, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	paper, err := s.papers.GetByDate(dbc, date)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	questions, err := s.papers.ListQuestions(dbc, paper.ID)
	if err != nil {
		return nil, err
	}
	out := &types.PaperWithQuestions{Paper: *paper, Questions: questions}

	if s.cache != nil {
		if err := s.cache.Set(ctx, date, out, PaperCacheTTL); err != nil {
			s.log.Warn("Paper cache write failed", "date", date, "error", err)
		}
	}
	return out, nil
}
