package dailypaper

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/repos/testutil"
	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/dedup"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
)

func newGormStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewGormStore(db, GormStoreRepos{
		Questions: repos.NewQuestionRepo(db, log),
		Papers:    repos.NewDailyPaperRepo(db, log),
		Logs:      repos.NewGenerationLogRepo(db, log),
		Weights:   repos.NewTopicWeightRepo(db, log),
	}, log), db
}

func draftFor(date string, ns ...int) PaperDraft {
	d := PaperDraft{Date: date, Counts: map[catalog.Subject]int{}}
	for i, n := range ns {
		q := questionFor("Physics", "Single Correct", n)
		q.Difficulty = "moderate"
		d.Questions = append(d.Questions, AcceptedQuestion{
			Subject:          catalog.Physics,
			Slot:             i,
			Question:         *q,
			HashSignature:    dedup.Signature(q),
			ConfidenceScore:  0.9,
			VerificationFlag: "Estimated",
		})
		d.Counts[catalog.Physics]++
	}
	return d
}

func TestGormStoreCommitAndHistory(t *testing.T) {
	store, db := newGormStore(t)
	ctx := context.Background()

	draft := draftFor("2026-03-10", 1, 2, 3)
	id, err := store.CommitPaper(ctx, draft)
	if err != nil || id == "" {
		t.Fatalf("CommitPaper: id=%q err=%v", id, err)
	}
	if ok, err := store.PaperExists(ctx, "2026-03-10"); err != nil || !ok {
		t.Fatalf("PaperExists: ok=%v err=%v", ok, err)
	}

	var links []types.DailyPaperQuestion
	if err := db.Order("question_order ASC").Find(&links).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 3 || links[0].QuestionOrder != 1 || links[2].QuestionOrder != 3 {
		t.Fatalf("links: %+v", links)
	}

	_, err = store.CommitPaper(ctx, draftFor("2026-03-10", 4))
	if !errors.Is(err, ErrPaperExists) {
		t.Fatalf("second commit: want ErrPaperExists, got %v", err)
	}
	var count int64
	db.Model(&types.Question{}).Count(&count)
	if count != 3 {
		t.Fatalf("rolled back commit left rows: questions=%d", count)
	}

	h, err := store.LoadHistory(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(h.Hashes) != 3 || h.Hashes[0] != draft.Questions[0].HashSignature || len(h.Texts) != 3 {
		t.Fatalf("history: %+v", h)
	}
	key := dedup.ConceptKey{Subject: "Physics", Topic: "Optics", ConceptTag: "concept 1"}
	if h.ConceptCounts[key] != 1 {
		t.Fatalf("concept counts: %+v", h.ConceptCounts)
	}

	old, err := store.LoadHistory(ctx, "2026-03-20")
	if err != nil {
		t.Fatalf("LoadHistory later: %v", err)
	}
	if len(old.Hashes) != 3 || len(old.ConceptCounts) != 0 {
		t.Fatalf("10 days later: hashes=%d concepts=%d", len(old.Hashes), len(old.ConceptCounts))
	}

	same, err := store.LoadHistory(ctx, "2026-03-10")
	if err != nil || len(same.Hashes) != 0 {
		t.Fatalf("history must exclude the run date itself: %+v err=%v", same, err)
	}
}

func TestGormStoreHistoryIncludesLaterPapers(t *testing.T) {
	store, _ := newGormStore(t)
	ctx := context.Background()

	later := draftFor("2026-03-10", 1, 2)
	if _, err := store.CommitPaper(ctx, later); err != nil {
		t.Fatalf("CommitPaper: %v", err)
	}
	h, err := store.LoadHistory(ctx, "2026-03-05")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	seen := map[string]bool{}
	for _, hash := range h.Hashes {
		seen[hash] = true
	}
	if len(h.Hashes) != 2 || !seen[later.Questions[0].HashSignature] || !seen[later.Questions[1].HashSignature] {
		t.Fatalf("hashes: want both later-paper hashes got=%v", h.Hashes)
	}
	if len(h.Texts) != 2 {
		t.Fatalf("texts: want=2 got=%d", len(h.Texts))
	}
	key := dedup.ConceptKey{Subject: "Physics", Topic: "Optics", ConceptTag: "concept 1"}
	if h.ConceptCounts[key] != 1 {
		t.Fatalf("concept counts: want=1 got=%+v", h.ConceptCounts)
	}
}

func TestGormStoreLogsAndWeights(t *testing.T) {
	store, db := newGormStore(t)
	ctx := context.Background()

	if ok, _ := store.HasSuccessLog(ctx, "2026-03-14"); ok {
		t.Fatalf("HasSuccessLog on empty db")
	}
	err := store.AppendLog(ctx, LogEntry{
		RunDate: "2026-03-14", Status: LogSuccess, TriggeredBy: TriggerCron,
		Message:  "ok",
		Metadata: map[string]any{"rejectionStats": RejectionStats{}, "bad": math.NaN()},
	})
	if err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	if ok, err := store.HasSuccessLog(ctx, "2026-03-14"); err != nil || !ok {
		t.Fatalf("HasSuccessLog: ok=%v err=%v", ok, err)
	}
	var row types.GenerationLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(row.Metadata, &meta); err != nil {
		t.Fatalf("metadata json: %v", err)
	}
	if _, ok := meta["rejectionStats"]; !ok {
		t.Fatalf("metadata missing rejectionStats: %s", row.Metadata)
	}
	if _, ok := meta["bad"]; ok {
		t.Fatalf("NaN metadata should be dropped")
	}

	db.Create(&types.TopicWeight{Subject: "Physics", Weights: datatypes.JSON([]byte(`{"Optics":2.5}`))})
	db.Create(&types.TopicWeight{Subject: "Chemistry", Weights: datatypes.JSON([]byte(`not json`))})
	db.Create(&types.TopicWeight{Subject: "Maths", Weights: datatypes.JSON([]byte(`{"Calculus":1}`))})
	weights, err := store.TopicWeights(ctx)
	if err != nil {
		t.Fatalf("TopicWeights: %v", err)
	}
	if len(weights) != 1 || weights[catalog.Physics]["Optics"] != 2.5 {
		t.Fatalf("weights: %+v", weights)
	}
}

func TestEngineWithGormStore(t *testing.T) {
	store, db := newGormStore(t)
	cat, err := catalog.Load(nil)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	source := &fakeSource{}
	engine, err := New(DefaultConfig(smallBlueprint(), cat), Deps{
		Store:   store,
		Locker:  newFakeLocker(),
		Source:  source,
		NewRand: func() planner.Rand { return planner.NewRand(3) },
	}, testutil.Logger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	res, err := engine.Generate(ctx, GenerateInput{Date: testDate, TriggeredBy: TriggerAdmin})
	if err != nil || res.Skipped || res.GeneratedCount != 7 {
		t.Fatalf("first run: res=%+v err=%v", res, err)
	}
	calls := source.callCount()

	again, err := engine.Generate(ctx, GenerateInput{Date: testDate, TriggeredBy: TriggerAdmin})
	if err != nil || !again.Skipped || again.Reason != ReasonCompleted {
		t.Fatalf("second run: res=%+v err=%v", again, err)
	}
	if source.callCount() != calls {
		t.Fatalf("idempotent run called the source")
	}

	var papers, questions, logs int64
	db.Model(&types.DailyPaper{}).Count(&papers)
	db.Model(&types.Question{}).Count(&questions)
	db.Model(&types.GenerationLog{}).Count(&logs)
	if papers != 1 || questions != 7 || logs != 1 {
		t.Fatalf("rows: papers=%d questions=%d logs=%d", papers, questions, logs)
	}
}
