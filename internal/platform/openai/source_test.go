package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/planner"
)

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
}

func newTestSource(t *testing.T, h http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := NewSource(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return s
}

var request = dailypaper.Request{
	Subject:        "Chemistry",
	Topics:         []string{"pH", "SN1"},
	TopicWeights:   []planner.WeightedTopic{{Topic: "pH", Weight: 1.5}, {Topic: "SN1", Weight: 1}},
	Difficulty:     "moderate",
	QuestionFormat: "Assertion-Reason",
	SyllabusUnits:  []string{"Equilibrium"},
	ExcludeHashes:  []string{"h1", "h2"},
}

func TestSourceRequestsStrictSchemaAndDecodes(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		rf, _ := body["response_format"].(map[string]any)
		if rf["type"] != "json_schema" {
			t.Errorf("response_format: %+v", rf)
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("messages: %d", len(msgs))
		} else {
			user, _ := msgs[1].(map[string]any)
			content, _ := user["content"].(string)
			if !strings.Contains(content, "Assertion-Reason") || !strings.Contains(content, "pH (1.50)") || !strings.Contains(content, "h1,h2") {
				t.Errorf("user prompt: %s", content)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"question":{"subject":"Chemistry","topic":"pH","syllabusUnit":"Equilibrium","conceptTag":"buffer","questionFormat":"Assertion-Reason","sourceType":"Conceptual","questionText":"a\nb","options":{"A":"a","B":"b","C":"c","D":"d"},"correctOption":"C","explanation":"e","difficulty":"moderate","probabilityScore":0.3},"confidence":0.88,"verificationFlag":"Verified"}`))
	})

	resp, err := s.Generate(context.Background(), request)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Question.Topic != "pH" || resp.Confidence != 0.88 || resp.VerificationFlag != "Verified" {
		t.Fatalf("response: %+v", resp)
	}
	if resp.Source != "openai:gpt-4o-mini" {
		t.Fatalf("source: %s", resp.Source)
	}
}

func TestSourceMalformedContentIsDecodeError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`not json`))
	})
	_, err := s.Generate(context.Background(), request)
	var de *candidate.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodeError, got %v", err)
	}
}

func TestSourceAPIErrorIsTransportError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}})
	})
	_, err := s.Generate(context.Background(), request)
	if err == nil {
		t.Fatalf("want error")
	}
	var de *candidate.DecodeError
	if errors.As(err, &de) {
		t.Fatalf("API failure must not be a decode error")
	}
}

func TestUserPromptTrimsExcludeList(t *testing.T) {
	req := request
	req.ExcludeHashes = make([]string, 80)
	for i := range req.ExcludeHashes {
		req.ExcludeHashes[i] = "x"
	}
	req.ExcludeHashes[79] = "newest"
	p := userPrompt(req)
	if !strings.Contains(p, "newest") || strings.Count(p, "x,") != promptExcludeLimit-1 {
		t.Fatalf("prompt exclude list: %s", p)
	}
}

func TestReplySchemaIsValidJSON(t *testing.T) {
	var v map[string]any
	if err := json.Unmarshal(replySchema(), &v); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func TestNewSourceRequiresKey(t *testing.T) {
	if _, err := NewSource(Config{}, nil); err == nil {
		t.Fatalf("want error without API key")
	}
}
