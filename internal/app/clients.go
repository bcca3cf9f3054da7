package app

import (
	"context"
	"fmt"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/aiservice"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/openai"
)

// Clients are the outbound dependencies of a run.
type Clients struct {
	Source dailypaper.Source
	// Warmup probes the source at startup. It never fails the boot.
	Warmup func(ctx context.Context)
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...", "candidate_source", cfg.CandidateSource)
	switch cfg.CandidateSource {
	case SourceHTTP:
		client, err := aiservice.NewClient(aiservice.ConfigFromEnv(log), log)
		if err != nil {
			return Clients{}, fmt.Errorf("init ai service client: %w", err)
		}
		return Clients{Source: client, Warmup: client.Warmup}, nil
	case SourceOpenAI:
		source, err := openai.NewSource(openai.ConfigFromEnv(log), log)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai source: %w", err)
		}
		return Clients{Source: source, Warmup: func(context.Context) {}}, nil
	default:
		return Clients{}, fmt.Errorf("unknown CANDIDATE_SOURCE %q (want %s or %s)", cfg.CandidateSource, SourceHTTP, SourceOpenAI)
	}
}
