package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos/testutil"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
)

func TestNextDailyRun(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before run time", time.Date(2026, 3, 14, 0, 0, 30, 0, ist), time.Date(2026, 3, 14, 0, 1, 0, 0, ist)},
		{"exactly at run time", time.Date(2026, 3, 14, 0, 1, 0, 0, ist), time.Date(2026, 3, 15, 0, 1, 0, 0, ist)},
		{"afternoon", time.Date(2026, 3, 14, 15, 0, 0, 0, ist), time.Date(2026, 3, 15, 0, 1, 0, 0, ist)},
		// 18:40 UTC on the 13th is 00:10 IST on the 14th.
		{"utc input", time.Date(2026, 3, 13, 18, 40, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 1, 0, 0, ist)},
		{"month end", time.Date(2026, 3, 31, 23, 0, 0, 0, ist), time.Date(2026, 4, 1, 0, 1, 0, 0, ist)},
	}
	for _, tc := range cases {
		got := NextDailyRun(tc.now, ist, DefaultScheduleHour, DefaultScheduleMinute)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

type scriptedGeneration struct {
	calls int
	res   *dailypaper.Result
	err   error
	panic bool
}

func (s *scriptedGeneration) Generate(context.Context, dailypaper.GenerateInput) (*dailypaper.Result, error) {
	return nil, nil
}

func (s *scriptedGeneration) Regenerate(context.Context, string, *planner.AdaptiveProfile) (*dailypaper.Result, error) {
	return nil, nil
}

func (s *scriptedGeneration) RunScheduled(context.Context) (*dailypaper.Result, error) {
	s.calls++
	if s.panic {
		panic("source exploded")
	}
	return s.res, s.err
}

func (s *scriptedGeneration) Today() string { return "2026-03-14" }

func TestSchedulerRunOnceSurvivesFailures(t *testing.T) {
	gen := &scriptedGeneration{err: errors.New("redis down")}
	s := NewDailyScheduler(gen, nil, DefaultScheduleHour, DefaultScheduleMinute, testutil.Logger(t))
	ctx := context.Background()

	s.runOnce(ctx)
	gen.err, gen.panic = nil, true
	s.runOnce(ctx)
	gen.panic = false
	gen.res = &dailypaper.Result{Date: "2026-03-14", Skipped: true, Reason: dailypaper.ReasonCronClaimed}
	s.runOnce(ctx)

	if gen.calls != 3 {
		t.Fatalf("calls: want=3 got=%d", gen.calls)
	}
}
