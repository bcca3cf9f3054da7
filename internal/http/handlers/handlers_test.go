package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/response"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/apierr"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/services"
)

type fakeGeneration struct {
	lastIn    dailypaper.GenerateInput
	regenDate string
	res       *dailypaper.Result
	err       error
}

func (f *fakeGeneration) Generate(_ context.Context, in dailypaper.GenerateInput) (*dailypaper.Result, error) {
	f.lastIn = in
	return f.res, f.err
}

func (f *fakeGeneration) Regenerate(_ context.Context, date string, profile *planner.AdaptiveProfile) (*dailypaper.Result, error) {
	f.regenDate = date
	f.lastIn = dailypaper.GenerateInput{Date: date, TriggeredBy: dailypaper.TriggerAdminRegenerate, Profile: profile}
	return f.res, f.err
}

func (f *fakeGeneration) RunScheduled(context.Context) (*dailypaper.Result, error) {
	return f.res, f.err
}
func (f *fakeGeneration) Today() string { return "2026-03-14" }

type fakePapers struct {
	paper *types.PaperWithQuestions
	err   error
}

func (f *fakePapers) GetPaper(context.Context, string) (*types.PaperWithQuestions, error) {
	return f.paper, f.err
}

type fakeAdmin struct {
	updateErr  error
	logLimit   int
	statsToday string
}

func (f *fakeAdmin) TopicWeights(context.Context) (map[string]map[string]float64, error) {
	return map[string]map[string]float64{"Physics": {"Optics": 2}}, nil
}

func (f *fakeAdmin) UpdateTopicWeights(_ context.Context, _ string, w map[string]float64) (map[string]float64, error) {
	return w, f.updateErr
}

func (f *fakeAdmin) ListLogs(_ context.Context, limit int) ([]*types.GenerationLog, error) {
	f.logLimit = limit
	return []*types.GenerationLog{{RunDate: "2026-03-14", Status: types.GenerationStatusSuccess}}, nil
}

func (f *fakeAdmin) DuplicateStats(_ context.Context, today string) ([]types.DuplicateStat, error) {
	f.statsToday = today
	return []types.DuplicateStat{{PaperDate: "2026-03-13", TotalQuestions: 180, UniqueHashes: 180}}, nil
}

type testRig struct {
	r      *gin.Engine
	gen    *fakeGeneration
	papers *fakePapers
	admin  *fakeAdmin
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	rig := &testRig{
		gen:    &fakeGeneration{res: &dailypaper.Result{Date: "2026-03-14", PaperID: "p1", GeneratedCount: 180}},
		papers: &fakePapers{},
		admin:  &fakeAdmin{},
	}
	gh := NewGenerationHandler(log, rig.gen)
	ah := NewAdminHandler(log, rig.papers, rig.admin, rig.gen)
	r := gin.New()
	r.POST("/api/admin/generate", gh.Generate)
	r.POST("/api/admin/paper/regenerate", gh.Regenerate)
	r.GET("/api/admin/paper/:date", ah.GetPaper)
	r.GET("/api/admin/topic-weights", ah.GetTopicWeights)
	r.PUT("/api/admin/topic-weights", ah.UpdateTopicWeights)
	r.GET("/api/admin/logs", ah.ListLogs)
	r.GET("/api/admin/duplicates", ah.DuplicateStats)
	rig.r = r
	return rig
}

func (rig *testRig) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	rig.r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestGenerateSuccessAndEmptyBody(t *testing.T) {
	rig := newRig(t)

	rec := rig.do(http.MethodPost, "/api/admin/generate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d (%s)", rec.Code, rec.Body.String())
	}
	var res dailypaper.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.PaperID != "p1" || res.GeneratedCount != 180 {
		t.Fatalf("result: %+v", res)
	}
	if rig.gen.lastIn.TriggeredBy != dailypaper.TriggerAdmin || rig.gen.lastIn.Date != "" {
		t.Fatalf("input: %+v", rig.gen.lastIn)
	}

	rec = rig.do(http.MethodPost, "/api/admin/generate", `{"date":"2026-03-10","profile":{"eliteMode":true}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with body: %d", rec.Code)
	}
	if rig.gen.lastIn.Date != "2026-03-10" || rig.gen.lastIn.Profile == nil || !rig.gen.lastIn.Profile.EliteMode {
		t.Fatalf("input with body: %+v", rig.gen.lastIn)
	}

	if rec := rig.do(http.MethodPost, "/api/admin/generate", `{"date":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: want=400 got=%d", rec.Code)
	}
}

func TestAdaptiveProfileReachesGeneration(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		body  string
		elite bool
	}{
		{"regenerate adaptiveProfile", "/api/admin/paper/regenerate", `{"date":"2026-03-14","adaptiveProfile":{"eliteMode":true}}`, true},
		{"generate adaptiveProfile", "/api/admin/generate", `{"date":"2026-03-14","adaptiveProfile":{"eliteMode":true}}`, true},
		{"regenerate profile alias", "/api/admin/paper/regenerate", `{"date":"2026-03-14","profile":{"eliteMode":true}}`, true},
		{"adaptiveProfile wins", "/api/admin/generate", `{"date":"2026-03-14","adaptiveProfile":{"eliteMode":false},"profile":{"eliteMode":true}}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newRig(t)
			rec := rig.do(http.MethodPost, tc.path, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: want=200 got=%d (%s)", rec.Code, rec.Body.String())
			}
			p := rig.gen.lastIn.Profile
			if p == nil {
				t.Fatalf("profile: want non-nil got=nil")
			}
			if p.EliteMode != tc.elite {
				t.Fatalf("eliteMode: want=%v got=%v", tc.elite, p.EliteMode)
			}
			if rig.gen.lastIn.Date != "2026-03-14" {
				t.Fatalf("date: want=2026-03-14 got=%q", rig.gen.lastIn.Date)
			}
		})
	}
}

func TestGenerateSkippedIs200(t *testing.T) {
	rig := newRig(t)
	rig.gen.res = &dailypaper.Result{Date: "2026-03-14", Skipped: true, Reason: dailypaper.ReasonInProgress}

	rec := rig.do(http.MethodPost, "/api/admin/generate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"skipped":true`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"exhausted", &dailypaper.SlotExhaustedError{Subject: catalog.Physics, Slot: 3, Attempts: 20}, http.StatusUnprocessableEntity, "generation_exhausted"},
		{"wrapped exhausted", fmt.Errorf("run: %w", dailypaper.ErrSlotExhausted), http.StatusUnprocessableEntity, "generation_exhausted"},
		{"invalid", fmt.Errorf("%w: bad date", dailypaper.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"commit", fmt.Errorf("%w: tx", dailypaper.ErrCommitFailed), http.StatusInternalServerError, "generation_failed"},
		{"other", errors.New("redis down"), http.StatusInternalServerError, "generation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newRig(t)
			rig.gen.res, rig.gen.err = nil, tc.err
			rec := rig.do(http.MethodPost, "/api/admin/paper/regenerate", `{"date":"2026-03-14"}`)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("code: want=%s got=%s", tc.code, got)
			}
			if rig.gen.regenDate != "2026-03-14" {
				t.Fatalf("regenerate date: %q", rig.gen.regenDate)
			}
		})
	}
}

func TestGetPaper(t *testing.T) {
	rig := newRig(t)
	rig.papers.paper = &types.PaperWithQuestions{Paper: types.DailyPaper{PaperDate: "2026-03-14"}}
	if rec := rig.do(http.MethodGet, "/api/admin/paper/2026-03-14", ""); rec.Code != http.StatusOK {
		t.Fatalf("found: want=200 got=%d", rec.Code)
	}

	rig.papers.paper, rig.papers.err = nil, services.ErrPaperNotFound
	rec := rig.do(http.MethodGet, "/api/admin/paper/2026-03-15", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "paper_not_found" {
		t.Fatalf("missing: %d %s", rec.Code, rec.Body.String())
	}

	rig.papers.err = fmt.Errorf("%w: date", dailypaper.ErrInvalidInput)
	if rec := rig.do(http.MethodGet, "/api/admin/paper/tomorrow", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: want=400 got=%d", rec.Code)
	}
}

func TestTopicWeightsEndpoints(t *testing.T) {
	rig := newRig(t)
	rec := rig.do(http.MethodGet, "/api/admin/topic-weights", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Optics":2`) {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(http.MethodPut, "/api/admin/topic-weights", `{"subject":"Physics","weights":{"Optics":3}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: want=200 got=%d (%s)", rec.Code, rec.Body.String())
	}
	if rec := rig.do(http.MethodPut, "/api/admin/topic-weights", `{"weights":{"Optics":3}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing subject: want=400 got=%d", rec.Code)
	}

	rig.admin.updateErr = fmt.Errorf("%w: weight", dailypaper.ErrInvalidInput)
	rec = rig.do(http.MethodPut, "/api/admin/topic-weights", `{"subject":"Physics","weights":{"Optics":-1}}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_topic_weights" {
		t.Fatalf("invalid weights: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogsAndDuplicates(t *testing.T) {
	rig := newRig(t)
	if rec := rig.do(http.MethodGet, "/api/admin/logs", ""); rec.Code != http.StatusOK {
		t.Fatalf("logs: %d", rec.Code)
	}
	if rig.admin.logLimit != defaultLogLimit {
		t.Fatalf("default limit: want=%d got=%d", defaultLogLimit, rig.admin.logLimit)
	}
	rig.do(http.MethodGet, "/api/admin/logs?limit=5", "")
	if rig.admin.logLimit != 5 {
		t.Fatalf("limit: want=5 got=%d", rig.admin.logLimit)
	}
	if rec := rig.do(http.MethodGet, "/api/admin/logs?limit=many", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: want=400 got=%d", rec.Code)
	}

	rec := rig.do(http.MethodGet, "/api/admin/duplicates", "")
	if rec.Code != http.StatusOK || rig.admin.statsToday != "2026-03-14" {
		t.Fatalf("duplicates: %d today=%q", rec.Code, rig.admin.statsToday)
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := true
	h := NewHealthHandler(map[string]HealthProbe{
		"redis": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	})
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthy: %d %q", rec.Code, rec.Body.String())
	}

	healthy = false
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("degraded: %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerationErrorPassesAPIErrorThrough(t *testing.T) {
	in := apierr.New(http.StatusConflict, "paper_locked", errors.New("busy"))
	if got := generationError(fmt.Errorf("wrap: %w", in)); got != in {
		t.Fatalf("apierr passthrough: got=%+v", got)
	}
}
