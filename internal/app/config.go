package app

import (
	"strings"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http/middleware"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/envutil"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	SourceHTTP   = "http"
	SourceOpenAI = "openai"

	defaultTimezone = "Asia/Kolkata"
)

type Config struct {
	Port            string
	Environment     string
	Version         string
	ShutdownTimeout time.Duration

	// CandidateSource selects the question source: the AI service over HTTP
	// or OpenAI in process.
	CandidateSource  string
	TimezoneName     string
	Location         *time.Location
	ParallelSubjects bool
	SchedulerEnabled bool

	CORSOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:             envutil.String("PORT", "8080", log),
		Environment:      envutil.String("APP_ENV", "development", log),
		Version:          envutil.String("APP_VERSION", "dev", log),
		ShutdownTimeout:  envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second, log),
		CandidateSource:  strings.ToLower(envutil.String("CANDIDATE_SOURCE", SourceHTTP, log)),
		TimezoneName:     envutil.String("GENERATION_TIMEZONE", defaultTimezone, log),
		ParallelSubjects: envutil.Bool("GENERATION_PARALLEL_SUBJECTS", false, log),
		SchedulerEnabled: envutil.Bool("GENERATION_SCHEDULER_ENABLED", true, log),
		CORSOrigins:      envutil.List("CORS_ORIGINS", middleware.DefaultCORSOrigins, log),
	}
	cfg.Location = loadLocation(cfg.TimezoneName, log)
	return cfg
}

// loadLocation falls back to a fixed IST offset when the zone database is
// unavailable.
func loadLocation(name string, log *logger.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	if log != nil {
		log.Warn("Unknown GENERATION_TIMEZONE, using fixed IST offset", "timezone", name, "error", err)
	}
	return time.FixedZone("IST", 5*3600+30*60)
}
