package dailypaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/dedup"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/validation"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	TriggerSystem          = "system"
	TriggerCron            = "cron"
	TriggerAdmin           = "admin"
	TriggerAdminRegenerate = "admin-regenerate"

	DateLayout = "2006-01-02"
)

type Config struct {
	Blueprint catalog.Blueprint
	Catalog   *catalog.Catalog

	LockTTL      time.Duration
	CronLockTTL  time.Duration
	DuplicateTTL time.Duration

	MinConfidence          float64
	SlotAttempts           int
	RegenerateSlotAttempts int
	ConceptLimit           int
	ExcludeHashLimit       int

	// ParallelSubjects fills subjects concurrently. Slot order within the
	// paper is unchanged.
	ParallelSubjects bool
}

func DefaultConfig(bp catalog.Blueprint, cat *catalog.Catalog) Config {
	return Config{
		Blueprint:              bp,
		Catalog:                cat,
		LockTTL:                DefaultLockTTL,
		CronLockTTL:            DefaultCronLockTTL,
		DuplicateTTL:           30 * 24 * time.Hour,
		MinConfidence:          0.75,
		SlotAttempts:           20,
		RegenerateSlotAttempts: 60,
		ConceptLimit:           dedup.DefaultConceptLimit,
		ExcludeHashLimit:       2000,
	}
}

type Deps struct {
	Store  Store
	Locker Locker
	Hashes HashCache
	Papers PaperCache
	Source Source
	// NewRand seeds the shuffle for each run. Defaults to a time-seeded PCG.
	NewRand func() planner.Rand
}

type GenerateInput struct {
	Date        string                   `json:"date"`
	TriggeredBy string                   `json:"triggeredBy"`
	Profile     *planner.AdaptiveProfile `json:"adaptiveProfile,omitempty"`
}

type Result struct {
	Date           string          `json:"date"`
	Skipped        bool            `json:"skipped"`
	Reason         string          `json:"reason,omitempty"`
	PaperID        string          `json:"paperId,omitempty"`
	GeneratedCount int             `json:"generatedCount,omitempty"`
	RejectionStats *RejectionStats `json:"rejectionStats,omitempty"`
}

type Engine struct {
	cfg       Config
	store     Store
	locker    Locker
	hashes    HashCache
	papers    PaperCache
	source    Source
	validator *validation.Validator
	newRand   func() planner.Rand
	log       *logger.Logger
	tracer    trace.Tracer
}

// New checks the configuration up front so a bad blueprint or an empty topic
// pool fails before any lock is touched.
func New(cfg Config, deps Deps, baseLog *logger.Logger) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog required", ErrInvalidConfig)
	}
	if err := cfg.Blueprint.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil || deps.Locker == nil || deps.Source == nil {
		return nil, fmt.Errorf("%w: store, locker and source are required", ErrInvalidConfig)
	}
	if cfg.SlotAttempts <= 0 || cfg.RegenerateSlotAttempts <= 0 {
		return nil, fmt.Errorf("%w: slot attempt budgets must be positive", ErrInvalidConfig)
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	newRand := deps.NewRand
	if newRand == nil {
		newRand = func() planner.Rand { return planner.NewRand(uint64(time.Now().UnixNano())) }
	}
	return &Engine{
		cfg:       cfg,
		store:     deps.Store,
		locker:    deps.Locker,
		hashes:    deps.Hashes,
		papers:    deps.Papers,
		source:    deps.Source,
		validator: validation.New(cfg.Catalog),
		newRand:   newRand,
		log:       baseLog.With("service", "DailyPaperEngine"),
		tracer:    otel.Tracer("dailypaper"),
	}, nil
}

// runState is everything one run owns. Shared between subject workers; the
// guard and stats synchronize themselves.
type runState struct {
	date         string
	trigger      string
	profile      *planner.AdaptiveProfile
	slotAttempts int
	plan         planner.Plan
	guard        *dedup.Guard
	stats        *statsRecorder
	weights      map[catalog.Subject][]planner.WeightedTopic
	log          *logger.Logger
}

func (r *runState) isRegenerate() bool { return r.trigger == TriggerAdminRegenerate }

func checkDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	return nil
}

// Generate runs the daily paper state machine for in.Date. Skips are reported
// through Result, never as errors.
func (e *Engine) Generate(ctx context.Context, in GenerateInput) (res *Result, err error) {
	if err := checkDate(in.Date); err != nil {
		return nil, err
	}
	if in.TriggeredBy == "" {
		in.TriggeredBy = TriggerSystem
	}

	ctx, span := e.tracer.Start(ctx, "dailypaper.generate", trace.WithAttributes(
		attribute.String("paper.date", in.Date),
		attribute.String("paper.trigger", in.TriggeredBy),
	))
	defer func() {
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("paper.outcome", "failed"))
		case res != nil && res.Skipped:
			span.SetAttributes(attribute.String("paper.outcome", "skipped"))
		default:
			span.SetAttributes(attribute.String("paper.outcome", "success"))
		}
		span.End()
	}()

	log := e.log.With("date", in.Date, "triggered_by", in.TriggeredBy)

	release, ok, err := e.acquire(ctx, LockKey(in.Date), e.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info("Generation skipped", "reason", ReasonInProgress)
		return &Result{Date: in.Date, Skipped: true, Reason: ReasonInProgress}, nil
	}
	defer release()

	done, err := e.idempotent(ctx, in.Date)
	if err != nil {
		return nil, e.fail(ctx, in, err.Error(), nil, err)
	}
	if done {
		if in.TriggeredBy == TriggerAdminRegenerate {
			log.Warn("Regeneration requested for a completed date; existing paper is kept")
		}
		log.Info("Generation skipped", "reason", ReasonCompleted)
		return &Result{Date: in.Date, Skipped: true, Reason: ReasonCompleted}, nil
	}

	run, err := e.prepare(ctx, in, log)
	if err != nil {
		return nil, e.fail(ctx, in, err.Error(), nil, err)
	}

	accepted, err := e.generateAll(ctx, run)
	if err != nil {
		stats := run.stats.snapshot()
		var exhausted *SlotExhaustedError
		if errors.As(err, &exhausted) {
			meta := map[string]any{
				"subject":            exhausted.Subject,
				"slot":               exhausted.Slot,
				"requiredDifficulty": exhausted.RequiredDifficulty,
				"requiredFormat":     exhausted.RequiredFormat,
				"lastRejection":      exhausted.LastRejection,
				"rejectionStats":     stats,
			}
			return nil, e.fail(ctx, in, exhausted.Error(), meta, err)
		}
		return nil, e.fail(ctx, in, err.Error(), map[string]any{"rejectionStats": stats}, err)
	}

	total := run.plan.Total()
	if len(accepted) != total || len(accepted) > e.cfg.Blueprint.MaxDaily {
		err := fmt.Errorf("generated %d questions, want %d (max %d)", len(accepted), total, e.cfg.Blueprint.MaxDaily)
		return nil, e.fail(ctx, in, err.Error(), map[string]any{"generatedCount": len(accepted)}, err)
	}

	draft := PaperDraft{Date: in.Date, Counts: map[catalog.Subject]int{}, Questions: accepted}
	for _, sp := range run.plan.Subjects {
		draft.Counts[sp.Subject] = sp.Total
	}
	paperID, err := e.store.CommitPaper(ctx, draft)
	if errors.Is(err, ErrPaperExists) {
		log.Warn("Paper for date was committed by a concurrent run", "error", err)
		return &Result{Date: in.Date, Skipped: true, Reason: ReasonCommitRaced}, nil
	}
	if err != nil {
		stats := run.stats.snapshot()
		wrapped := fmt.Errorf("%w: %v", ErrCommitFailed, err)
		return nil, e.fail(ctx, in, wrapped.Error(), map[string]any{"rejectionStats": stats}, wrapped)
	}

	e.afterCommit(ctx, run, accepted, log)

	stats := run.stats.snapshot()
	entry := LogEntry{
		RunDate:     in.Date,
		Status:      LogSuccess,
		TriggeredBy: in.TriggeredBy,
		Message:     fmt.Sprintf("Generated %d questions", len(accepted)),
		Metadata: map[string]any{
			"paperId":                paperID,
			"rejectionStats":         stats,
			"adaptiveProfileApplied": in.Profile != nil,
			"blueprint":              run.plan,
		},
	}
	if err := e.store.AppendLog(ctx, entry); err != nil {
		// The paper row already marks the date complete.
		log.Error("Success log write failed", "paper_id", paperID, "error", err)
	}
	log.Info("Daily paper generated", "paper_id", paperID, "generated", len(accepted), "rejections", stats.Total())

	return &Result{
		Date:           in.Date,
		PaperID:        paperID,
		GeneratedCount: len(accepted),
		RejectionStats: &stats,
	}, nil
}

func (e *Engine) prepare(ctx context.Context, in GenerateInput, log *logger.Logger) (*runState, error) {
	adminWeights, err := e.store.TopicWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("load topic weights: %w", err)
	}
	history, err := e.store.LoadHistory(ctx, in.Date)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	regenerate := in.TriggeredBy == TriggerAdminRegenerate
	opts := dedup.Options{
		SemanticThreshold: dedup.DefaultSemanticThreshold,
		ConceptLimit:      e.cfg.ConceptLimit,
	}
	attempts := e.cfg.SlotAttempts
	if regenerate {
		opts.SemanticThreshold = dedup.RegenerateSemanticThreshold
		opts.SkipRecency = true
		attempts = e.cfg.RegenerateSlotAttempts
	}

	run := &runState{
		date:         in.Date,
		trigger:      in.TriggeredBy,
		profile:      in.Profile,
		slotAttempts: attempts,
		plan:         planner.Build(e.cfg.Blueprint, in.Profile, e.newRand()),
		guard:        dedup.NewGuard(history, e.hashes, opts),
		stats:        newStatsRecorder(),
		weights:      map[catalog.Subject][]planner.WeightedTopic{},
		log:          log,
	}
	for _, sp := range run.plan.Subjects {
		topics := e.cfg.Catalog.Topics(sp.Subject)
		run.weights[sp.Subject] = planner.WeightTopics(sp.Subject, topics, adminWeights[sp.Subject], in.Profile)
	}
	log.Debug("Run prepared",
		"history_hashes", len(history.Hashes),
		"history_texts", len(history.Texts),
		"slot_attempts", attempts,
		"planned", run.plan.Total(),
	)
	return run, nil
}

// generateAll fills every slot and returns accepted questions in plan order.
func (e *Engine) generateAll(ctx context.Context, run *runState) ([]AcceptedQuestion, error) {
	perSubject := make([][]AcceptedQuestion, len(run.plan.Subjects))

	if !e.cfg.ParallelSubjects {
		for i, sp := range run.plan.Subjects {
			out, err := e.generateSubject(ctx, run, sp)
			if err != nil {
				return nil, err
			}
			perSubject[i] = out
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(len(run.plan.Subjects))
		for i, sp := range run.plan.Subjects {
			g.Go(func() error {
				out, err := e.generateSubject(gctx, run, sp)
				if err != nil {
					return err
				}
				perSubject[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var all []AcceptedQuestion
	for _, qs := range perSubject {
		all = append(all, qs...)
	}
	return all, nil
}

func (e *Engine) generateSubject(ctx context.Context, run *runState, sp planner.SubjectPlan) ([]AcceptedQuestion, error) {
	out := make([]AcceptedQuestion, 0, sp.Total)
	topics := e.cfg.Catalog.Topics(sp.Subject)
	units := e.cfg.Catalog.UnitPool(sp.Subject)
	for i := 0; i < sp.Total; i++ {
		q, err := e.fillSlot(ctx, run, sp, i, topics, units)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, nil
}

// fillSlot requests candidates until one passes every check or the slot's
// attempt budget runs out.
func (e *Engine) fillSlot(ctx context.Context, run *runState, sp planner.SubjectPlan, i int, topics, units []string) (*AcceptedQuestion, error) {
	slot := sp.Slot(i)
	subject := sp.Subject
	var lastRejection string
	reject := func(cat Category, reason string) {
		run.stats.record(subject, cat)
		lastRejection = string(cat) + ": " + reason
	}

	for attempt := 1; attempt <= run.slotAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := e.source.Generate(ctx, Request{
			Subject:        string(subject),
			Topics:         topics,
			TopicWeights:   run.weights[subject],
			Difficulty:     string(slot.Difficulty),
			QuestionFormat: string(slot.Format),
			SyllabusUnits:  units,
			ExcludeHashes:  run.guard.ExcludeHashes(e.cfg.ExcludeHashLimit),
		})
		if err != nil {
			var de *candidate.DecodeError
			if errors.As(err, &de) {
				reject(CategoryValidation, de.Error())
				continue
			}
			return nil, fmt.Errorf("candidate source (%s slot %d): %w", subject, i+1, err)
		}
		if resp == nil || resp.Question == nil {
			reject(CategoryValidation, "empty candidate")
			continue
		}

		q := *resp.Question
		if resp.Confidence < e.cfg.MinConfidence {
			reject(CategoryConfidence, fmt.Sprintf("confidence %.2f below %.2f", resp.Confidence, e.cfg.MinConfidence))
			continue
		}
		q.Difficulty = string(slot.Difficulty)
		if q.QuestionFormat != string(slot.Format) {
			reject(CategoryFormatMismatch, fmt.Sprintf("got %q want %q", q.QuestionFormat, slot.Format))
			continue
		}
		if !e.cfg.Catalog.UnitAllowedForTopic(subject, q.Topic, q.SyllabusUnit) {
			reject(CategorySyllabusMismatch, fmt.Sprintf("unit %q not registered for topic %q", q.SyllabusUnit, q.Topic))
			continue
		}
		if q.Subject != string(subject) {
			reject(CategoryValidation, fmt.Sprintf("subject %q in %s slot", q.Subject, subject))
			continue
		}
		if r := e.validator.Validate(&q); r != nil {
			reject(CategoryValidation, r.Error())
			continue
		}

		hash, verdict, err := run.guard.Admit(ctx, &q)
		if err != nil {
			return nil, err
		}
		if verdict != dedup.Accepted {
			reject(categoryFor(verdict), hash)
			continue
		}

		run.log.Debug("Slot filled", "subject", subject, "slot", i+1, "attempts", attempt)
		return &AcceptedQuestion{
			Subject:          subject,
			Slot:             i,
			Question:         q,
			HashSignature:    hash,
			ConfidenceScore:  resp.Confidence,
			VerificationFlag: resp.VerificationFlag,
		}, nil
	}

	return nil, &SlotExhaustedError{
		Subject:            subject,
		Slot:               i + 1,
		Attempts:           run.slotAttempts,
		RequiredDifficulty: slot.Difficulty,
		RequiredFormat:     slot.Format,
		LastRejection:      lastRejection,
	}
}

func (e *Engine) afterCommit(ctx context.Context, run *runState, accepted []AcceptedQuestion, log *logger.Logger) {
	if e.hashes != nil {
		hashes := make([]string, 0, len(accepted))
		for _, q := range accepted {
			hashes = append(hashes, q.HashSignature)
		}
		if err := e.hashes.Remember(ctx, hashes, e.cfg.DuplicateTTL); err != nil {
			log.Warn("Registering hashes in duplicate cache failed", "count", len(hashes), "error", err)
		}
	}
	if e.papers != nil {
		if err := e.papers.Invalidate(ctx, run.date); err != nil {
			log.Warn("Paper cache invalidation failed", "error", err)
		}
	}
}

// fail writes a failure log and returns cause. A log write error is only logged.
func (e *Engine) fail(ctx context.Context, in GenerateInput, message string, meta map[string]any, cause error) error {
	entry := LogEntry{
		RunDate:     in.Date,
		Status:      LogFailed,
		TriggeredBy: in.TriggeredBy,
		Message:     message,
		Metadata:    meta,
	}
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := e.store.AppendLog(lctx, entry); err != nil {
		e.log.Error("Failure log write failed", "date", in.Date, "error", err)
	}
	e.log.Error("Daily paper generation failed", "date", in.Date, "triggered_by", in.TriggeredBy, "error", cause)
	return cause
}

// Today resolves the calendar date in loc. The engine itself never reads a clock.
func Today(loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
