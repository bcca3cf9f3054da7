package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
)

const (
	DefaultSemanticThreshold    = 0.85
	RegenerateSemanticThreshold = 0.93
	DefaultConceptLimit         = 3
)

// ConceptKey identifies a (subject, topic, concept) combination for the
// trailing-window repetition limit.
type ConceptKey struct {
	Subject    string
	Topic      string
	ConceptTag string
}

// History is the persisted state a run is checked against.
type History struct {
	// Hashes from the trailing 30 days, oldest first.
	Hashes []string
	// Texts from the trailing 30 days.
	Texts []string
	// Occurrences per concept over the trailing 7 days.
	ConceptCounts map[ConceptKey]int
}

// HashCache is the short-lived cross-run duplicate cache.
type HashCache interface {
	Exists(ctx context.Context, hash string) (bool, error)
}

type Options struct {
	SemanticThreshold float64
	ConceptLimit      int
	SkipRecency       bool
}

type Verdict string

const (
	Accepted          Verdict = "accepted"
	HashDuplicate     Verdict = "hashDuplicate"
	SemanticDuplicate Verdict = "semanticDuplicate"
	TopicRepetition   Verdict = "topicRepetition"
)

// Guard holds one run's duplicate state. Admit is atomic, so one Guard can be
// shared by concurrent subject loops.
type Guard struct {
	mu sync.Mutex

	cache HashCache
	opts  Options

	historyHashes []string
	knownHashes   map[string]struct{}
	historyTokens []TokenSet

	acceptedHashes []string
	acceptedSet    map[string]struct{}
	acceptedTokens []TokenSet

	concepts map[ConceptKey]int
}

func NewGuard(history History, cache HashCache, opts Options) *Guard {
	if opts.SemanticThreshold <= 0 {
		opts.SemanticThreshold = DefaultSemanticThreshold
	}
	if opts.ConceptLimit <= 0 {
		opts.ConceptLimit = DefaultConceptLimit
	}
	g := &Guard{
		cache:         cache,
		opts:          opts,
		historyHashes: history.Hashes,
		knownHashes:   make(map[string]struct{}, len(history.Hashes)),
		historyTokens: make([]TokenSet, 0, len(history.Texts)),
		acceptedSet:   map[string]struct{}{},
		concepts:      make(map[ConceptKey]int, len(history.ConceptCounts)),
	}
	for _, h := range history.Hashes {
		g.knownHashes[h] = struct{}{}
	}
	for _, text := range history.Texts {
		g.historyTokens = append(g.historyTokens, Tokens(text))
	}
	for k, v := range history.ConceptCounts {
		g.concepts[k] = v
	}
	return g
}

// Admit runs the hash, semantic and recency checks in that order and, on
// acceptance, records the candidate before returning. A cache lookup error
// aborts the check.
func (g *Guard) Admit(ctx context.Context, q *candidate.Question) (string, Verdict, error) {
	hash := Signature(q)
	tokens := Tokens(q.QuestionText)
	key := ConceptKey{Subject: q.Subject, Topic: q.Topic, ConceptTag: q.ConceptTag}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.acceptedSet[hash]; ok {
		return hash, HashDuplicate, nil
	}
	if _, ok := g.knownHashes[hash]; ok {
		return hash, HashDuplicate, nil
	}
	if g.cache != nil {
		hit, err := g.cache.Exists(ctx, hash)
		if err != nil {
			return hash, "", fmt.Errorf("duplicate cache lookup: %w", err)
		}
		if hit {
			return hash, HashDuplicate, nil
		}
	}

	if g.similarTo(g.historyTokens, tokens) || g.similarTo(g.acceptedTokens, tokens) {
		return hash, SemanticDuplicate, nil
	}

	if !g.opts.SkipRecency && g.concepts[key] >= g.opts.ConceptLimit {
		return hash, TopicRepetition, nil
	}

	g.acceptedHashes = append(g.acceptedHashes, hash)
	g.acceptedSet[hash] = struct{}{}
	g.acceptedTokens = append(g.acceptedTokens, tokens)
	g.concepts[key]++
	return hash, Accepted, nil
}

func (g *Guard) similarTo(pool []TokenSet, tokens TokenSet) bool {
	for _, other := range pool {
		if jaccard(tokens, other) >= g.opts.SemanticThreshold {
			return true
		}
	}
	return false
}

// ExcludeHashes is the exclusion hint for the source: persisted hashes then
// in-run hashes, de-duplicated, keeping the newest limit entries.
func (g *Guard) ExcludeHashes(limit int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	all := make([]string, 0, len(g.historyHashes)+len(g.acceptedHashes))
	seen := make(map[string]struct{}, cap(all))
	for _, list := range [][]string{g.historyHashes, g.acceptedHashes} {
		for _, h := range list {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			all = append(all, h)
		}
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// Accepted returns the hashes accepted so far in acceptance order.
func (g *Guard) Accepted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.acceptedHashes...)
}
