package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	catalogPathEnv      = "PAPER_CATALOG_YAML"
	biologyTopicsEnv    = "BIOLOGY_TOPICS_JSON"
	embeddedCatalogFile = "catalog.yaml"
)

//go:embed catalog.yaml blueprint.yaml
var specFS embed.FS

// ErrInvalidConfig marks a catalogue or blueprint that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid paper configuration")

type Subject string

const (
	Physics   Subject = "Physics"
	Chemistry Subject = "Chemistry"
	Biology   Subject = "Biology"
)

var Subjects = []Subject{Physics, Chemistry, Biology}

func ParseSubject(raw string) (Subject, bool) {
	for _, s := range Subjects {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

type Difficulty string

const (
	Easy     Difficulty = "easy"
	Moderate Difficulty = "moderate"
	Hard     Difficulty = "hard"
	// Medium is still accepted from older sources but never planned.
	Medium Difficulty = "medium"
)

type Format string

const (
	SingleCorrect   Format = "Single Correct"
	AssertionReason Format = "Assertion-Reason"
	StatementPair   Format = "Statement I-II"
	MultiStatement  Format = "Multi-Statement"
	CaseBased       Format = "Case-Based"
)

var Formats = []Format{SingleCorrect, AssertionReason, StatementPair, MultiStatement, CaseBased}

type SourceType string

const (
	Conceptual  SourceType = "Conceptual"
	Numerical   SourceType = "Numerical"
	Application SourceType = "Application"
)

type yamlCatalog struct {
	Subjects []yamlSubject `yaml:"subjects"`
}

type yamlSubject struct {
	Name   string      `yaml:"name"`
	Units  []string    `yaml:"units"`
	Topics []yamlTopic `yaml:"topics"`
}

type yamlTopic struct {
	Name  string   `yaml:"name"`
	Units []string `yaml:"units"`
}

type subjectEntry struct {
	topics     []string
	topicSet   map[string]bool
	units      map[string]bool
	topicUnits map[string][]string
}

// Catalog is the read-only topic and syllabus registry. Safe for concurrent reads.
type Catalog struct {
	subjects map[Subject]*subjectEntry
}

// Load reads the embedded catalogue (or PAPER_CATALOG_YAML) and applies the
// BIOLOGY_TOPICS_JSON restriction when set.
func Load(log *logger.Logger) (*Catalog, error) {
	data, err := readSpec(catalogPathEnv, embeddedCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog: %v", ErrInvalidConfig, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(os.Getenv(biologyTopicsEnv)); raw != "" {
		var topics []string
		if err := json.Unmarshal([]byte(raw), &topics); err != nil {
			return nil, fmt.Errorf("%w: %s is not a JSON string array: %v", ErrInvalidConfig, biologyTopicsEnv, err)
		}
		dropped, err := c.Restrict(Biology, topics)
		if err != nil {
			return nil, err
		}
		if len(dropped) > 0 && log != nil {
			log.Warn("Ignoring biology topics missing from catalog", "topics", dropped)
		}
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrInvalidConfig, err)
	}
	c := &Catalog{subjects: map[Subject]*subjectEntry{}}
	for _, ys := range doc.Subjects {
		subject, ok := ParseSubject(strings.TrimSpace(ys.Name))
		if !ok {
			return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidConfig, ys.Name)
		}
		if _, dup := c.subjects[subject]; dup {
			return nil, fmt.Errorf("%w: duplicate subject %q", ErrInvalidConfig, subject)
		}
		entry := &subjectEntry{
			topicSet:   map[string]bool{},
			units:      map[string]bool{},
			topicUnits: map[string][]string{},
		}
		for _, u := range ys.Units {
			entry.units[strings.TrimSpace(u)] = true
		}
		for _, yt := range ys.Topics {
			name := strings.TrimSpace(yt.Name)
			if name == "" || entry.topicSet[name] {
				return nil, fmt.Errorf("%w: %s topic %q is empty or duplicated", ErrInvalidConfig, subject, yt.Name)
			}
			if len(yt.Units) == 0 {
				return nil, fmt.Errorf("%w: %s topic %q has no syllabus units", ErrInvalidConfig, subject, name)
			}
			for _, u := range yt.Units {
				if !entry.units[strings.TrimSpace(u)] {
					return nil, fmt.Errorf("%w: %s topic %q maps to unknown unit %q", ErrInvalidConfig, subject, name, u)
				}
				entry.topicUnits[name] = append(entry.topicUnits[name], strings.TrimSpace(u))
			}
			entry.topics = append(entry.topics, name)
			entry.topicSet[name] = true
		}
		c.subjects[subject] = entry
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports an empty topic pool for any subject.
func (c *Catalog) Validate() error {
	for _, s := range Subjects {
		entry := c.subjects[s]
		if entry == nil || len(entry.topics) == 0 {
			return fmt.Errorf("%w: %s topic list is empty", ErrInvalidConfig, s)
		}
	}
	return nil
}

// Restrict narrows a subject's topic pool to the given topics, keeping the
// given order. Topics missing from the catalogue are returned as dropped.
func (c *Catalog) Restrict(subject Subject, topics []string) ([]string, error) {
	entry := c.subjects[subject]
	if entry == nil {
		return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidConfig, subject)
	}
	kept := make([]string, 0, len(topics))
	keptSet := map[string]bool{}
	var dropped []string
	for _, t := range topics {
		t = strings.TrimSpace(t)
		switch {
		case t == "" || keptSet[t]:
		case entry.topicSet[t]:
			kept = append(kept, t)
			keptSet[t] = true
		default:
			dropped = append(dropped, t)
		}
	}
	if len(kept) == 0 {
		return dropped, fmt.Errorf("%w: %s topic list is empty", ErrInvalidConfig, subject)
	}
	entry.topics = kept
	entry.topicSet = keptSet
	return dropped, nil
}

func (c *Catalog) Topics(subject Subject) []string {
	entry := c.subjects[subject]
	if entry == nil {
		return nil
	}
	return append([]string(nil), entry.topics...)
}

func (c *Catalog) IsAllowedTopic(subject Subject, topic string) bool {
	entry := c.subjects[subject]
	return entry != nil && entry.topicSet[topic]
}

func (c *Catalog) IsOfficialUnit(subject Subject, unit string) bool {
	entry := c.subjects[subject]
	return entry != nil && entry.units[unit]
}

// UnitsForTopic returns the syllabus units registered for a topic.
func (c *Catalog) UnitsForTopic(subject Subject, topic string) []string {
	entry := c.subjects[subject]
	if entry == nil || !entry.topicSet[topic] {
		return nil
	}
	return append([]string(nil), entry.topicUnits[topic]...)
}

func (c *Catalog) UnitAllowedForTopic(subject Subject, topic, unit string) bool {
	for _, u := range c.UnitsForTopic(subject, topic) {
		if u == unit {
			return true
		}
	}
	return false
}

// UnitPool is the de-duplicated union of units over the subject's active topics.
func (c *Catalog) UnitPool(subject Subject) []string {
	entry := c.subjects[subject]
	if entry == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range entry.topics {
		for _, u := range entry.topicUnits[t] {
			if !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	return out
}

func readSpec(envKey, embedded string) ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(envKey)); path != "" {
		return os.ReadFile(path)
	}
	return specFS.ReadFile(embedded)
}
