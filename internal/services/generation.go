package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

// PaperEngine is the part of *dailypaper.Engine the trigger surfaces use.
type PaperEngine interface {
	Generate(ctx context.Context, in dailypaper.GenerateInput) (*dailypaper.Result, error)
	RunScheduled(ctx context.Context, date string) (*dailypaper.Result, error)
}

type GenerationService interface {
	// Generate runs a generation for in.Date, or today when it is empty.
	Generate(ctx context.Context, in dailypaper.GenerateInput) (*dailypaper.Result, error)
	Regenerate(ctx context.Context, date string, profile *planner.AdaptiveProfile) (*dailypaper.Result, error)
	// RunScheduled is the cron entry point for today.
	RunScheduled(ctx context.Context) (*dailypaper.Result, error)
	Today() string
}

type generationService struct {
	engine PaperEngine
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

var validTriggers = map[string]struct{}{
	dailypaper.TriggerSystem:          {},
	dailypaper.TriggerCron:            {},
	dailypaper.TriggerAdmin:           {},
	dailypaper.TriggerAdminRegenerate: {},
}

func NewGenerationService(engine PaperEngine, loc *time.Location, now func() time.Time, log *logger.Logger) GenerationService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &generationService{
		engine: engine,
		loc:    loc,
		now:    now,
		log:    log.With("service", "GenerationService"),
	}
}

func (s *generationService) Today() string {
	return dailypaper.Today(s.loc, s.now())
}

func (s *generationService) Generate(ctx context.Context, in dailypaper.GenerateInput) (*dailypaper.Result, error) {
	if in.Date == "" {
		in.Date = s.Today()
	}
	if in.TriggeredBy == "" {
		in.TriggeredBy = dailypaper.TriggerSystem
	}
	if _, ok := validTriggers[in.TriggeredBy]; !ok {
		return nil, fmt.Errorf("%w: unknown trigger %q", dailypaper.ErrInvalidInput, in.TriggeredBy)
	}
	s.log.Info("Generation requested", "date", in.Date, "triggered_by", in.TriggeredBy, "adaptive", in.Profile != nil)
	return s.engine.Generate(ctx, in)
}

func (s *generationService) Regenerate(ctx context.Context, date string, profile *planner.AdaptiveProfile) (*dailypaper.Result, error) {
	return s.Generate(ctx, dailypaper.GenerateInput{
		Date:        date,
		TriggeredBy: dailypaper.TriggerAdminRegenerate,
		Profile:     profile,
	})
}

func (s *generationService) RunScheduled(ctx context.Context) (*dailypaper.Result, error) {
	date := s.Today()
	s.log.Info("Scheduled generation starting", "date", date, "timezone", s.loc.String())
	return s.engine.RunScheduled(ctx, date)
}
