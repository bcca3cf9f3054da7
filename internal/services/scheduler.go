package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	DefaultScheduleHour   = 0
	DefaultScheduleMinute = 1
)

// DailyScheduler fires the scheduled generation once a day at a wall-clock
// time in the generation time zone.
type DailyScheduler struct {
	gen    GenerationService
	loc    *time.Location
	hour   int
	minute int
	now    func() time.Time
	log    *logger.Logger
}

func NewDailyScheduler(gen GenerationService, loc *time.Location, hour, minute int, log *logger.Logger) *DailyScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{
		gen:    gen,
		loc:    loc,
		hour:   hour,
		minute: minute,
		now:    time.Now,
		log:    log.With("component", "DailyScheduler"),
	}
}

// NextDailyRun returns the first hour:minute in loc strictly after now.
func NextDailyRun(now time.Time, loc *time.Location, hour, minute int) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

func (s *DailyScheduler) Start(ctx context.Context) {
	go func() {
		for {
			next := NextDailyRun(s.now(), s.loc, s.hour, s.minute)
			s.log.Info("Next scheduled generation", "at", next.Format(time.RFC3339))
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// runOnce never lets a failed or panicking run stop the loop.
func (s *DailyScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled generation panic", "panic", fmt.Sprint(r))
		}
	}()
	res, err := s.gen.RunScheduled(ctx)
	if err != nil {
		s.log.Error("Scheduled generation failed", "error", err)
		return
	}
	if res.Skipped {
		s.log.Info("Scheduled generation skipped", "date", res.Date, "reason", res.Reason)
		return
	}
	s.log.Info("Scheduled generation finished", "date", res.Date, "paper_id", res.PaperID, "generated", res.GeneratedCount)
}
