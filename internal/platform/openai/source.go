package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/envutil"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	defaultModel       = "gpt-4o-mini"
	schemaName         = "neet_candidate"
	promptExcludeLimit = 50
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		APIKey:      envutil.String("OPENAI_API_KEY", "", nil),
		Model:       envutil.String("OPENAI_MODEL", defaultModel, log),
		BaseURL:     envutil.String("OPENAI_BASE_URL", "", log),
		Temperature: 0.7,
	}
}

// Source asks a chat completion model for one candidate per call, using a
// strict JSON schema response format.
type Source struct {
	client *goopenai.Client
	cfg    Config
	log    *logger.Logger
}

func NewSource(cfg Config, log *logger.Logger) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if log == nil {
		log = logger.Nop()
	}
	conf := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	return &Source{
		client: goopenai.NewClientWithConfig(conf),
		cfg:    cfg,
		log:    log.With("service", "OpenAICandidateSource"),
	}, nil
}

func (s *Source) Generate(ctx context.Context, req dailypaper.Request) (*candidate.Response, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: replySchema(),
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &candidate.DecodeError{Err: fmt.Errorf("no choices in completion")}
	}
	out, err := candidate.Decode([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	out.Source = "openai:" + resp.Model
	s.log.Debug("Candidate received", "subject", req.Subject, "tokens", resp.Usage.TotalTokens)
	return out, nil
}

const systemPrompt = `You write NEET-UG multiple choice questions strictly within the NCERT syllabus.
Return exactly one question as JSON matching the schema. Use four distinct, descriptive options.
The question text must span at least two lines. Never use "all of the above", "none of the above"
or speculative wording. Report your confidence in the correctness of the answer between 0 and 1.`

func userPrompt(req dailypaper.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Question format: %s\n", req.QuestionFormat)
	b.WriteString("Topics (weight):")
	if len(req.TopicWeights) > 0 {
		for _, tw := range req.TopicWeights {
			fmt.Fprintf(&b, " %s (%.2f);", tw.Topic, tw.Weight)
		}
	} else {
		b.WriteString(" " + strings.Join(req.Topics, "; "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Syllabus units (syllabusUnit must be one of these): %s\n", strings.Join(req.SyllabusUnits, "; "))
	if n := len(req.ExcludeHashes); n > 0 {
		recent := req.ExcludeHashes
		if n > promptExcludeLimit {
			recent = recent[n-promptExcludeLimit:]
		}
		fmt.Fprintf(&b, "Do not repeat questions with these signatures: %s\n", strings.Join(recent, ","))
	}
	return b.String()
}

func replySchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["question", "confidence", "verificationFlag"],
  "properties": {
    "question": %s,
    "confidence": {"type": "number"},
    "verificationFlag": {"type": "string"}
  }
}`, candidate.QuestionSchema()))
}
