package dailypaper

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultLockTTL     = 20 * time.Minute
	DefaultCronLockTTL = 3 * time.Hour

	releaseTimeout = 5 * time.Second

	ReasonInProgress    = "Generation already in progress"
	ReasonCompleted     = "Daily generation already completed"
	ReasonCronClaimed   = "Scheduled generation already claimed"
	ReasonCommitRaced   = "Paper committed by a concurrent run"
	generationLockSpace = "generation:lock:"
	cronLockSpace       = "generation:cron:"
)

func LockKey(date string) string     { return generationLockSpace + date }
func CronLockKey(date string) string { return cronLockSpace + date }

// acquire returns a release func when the lock was taken.
func (e *Engine) acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token, ok, err := e.locker.Acquire(ctx, key, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Release is advisory. The TTL is what guarantees a crashed or
		// partitioned holder cannot block the date forever.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := e.locker.Release(rctx, key, token); err != nil {
			e.log.Warn("Lock release failed; relying on TTL", "key", key, "error", err)
		}
	}
	return release, true, nil
}

// idempotent reports whether the date already has a paper or a success log.
func (e *Engine) idempotent(ctx context.Context, date string) (bool, error) {
	exists, err := e.store.PaperExists(ctx, date)
	if err != nil {
		return false, fmt.Errorf("check paper: %w", err)
	}
	if exists {
		return true, nil
	}
	done, err := e.store.HasSuccessLog(ctx, date)
	if err != nil {
		return false, fmt.Errorf("check success log: %w", err)
	}
	return done, nil
}

// RunScheduled is the cron entry point: it claims the coarse per-day cron lock
// and then runs a normal generation for date.
func (e *Engine) RunScheduled(ctx context.Context, date string) (*Result, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	release, ok, err := e.acquire(ctx, CronLockKey(date), e.cfg.CronLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.log.Info("Scheduled generation skipped", "date", date, "reason", ReasonCronClaimed)
		return &Result{Date: date, Skipped: true, Reason: ReasonCronClaimed}, nil
	}
	defer release()
	return e.Generate(ctx, GenerateInput{Date: date, TriggeredBy: TriggerCron})
}
