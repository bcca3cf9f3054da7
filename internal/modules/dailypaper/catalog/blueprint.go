package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	blueprintPathEnv      = "PAPER_BLUEPRINT_YAML"
	embeddedBlueprintFile = "blueprint.yaml"
)

type DifficultyCounts struct {
	Easy     int `yaml:"easy" json:"easy"`
	Moderate int `yaml:"moderate" json:"moderate"`
	Hard     int `yaml:"hard" json:"hard"`
}

func (d DifficultyCounts) Total() int { return d.Easy + d.Moderate + d.Hard }

type FormatCount struct {
	Format Format `yaml:"format" json:"format"`
	Count  int    `yaml:"count" json:"count"`
}

type SubjectBlueprint struct {
	Subject    Subject          `yaml:"subject" json:"subject"`
	Total      int              `yaml:"total" json:"total"`
	Difficulty DifficultyCounts `yaml:"difficulty" json:"difficulty"`
	Formats    []FormatCount    `yaml:"formats" json:"formats"`
}

// Blueprint is the base per-subject plan for one daily run. Subjects are
// generated in slice order.
type Blueprint struct {
	MaxDaily int                `yaml:"max_daily_questions" json:"maxDailyQuestions"`
	Subjects []SubjectBlueprint `yaml:"subjects" json:"subjects"`
}

func (b Blueprint) Total() int {
	total := 0
	for _, s := range b.Subjects {
		total += s.Total
	}
	return total
}

func (b Blueprint) Subject(subject Subject) (SubjectBlueprint, bool) {
	for _, s := range b.Subjects {
		if s.Subject == subject {
			return s, true
		}
	}
	return SubjectBlueprint{}, false
}

func (b Blueprint) Validate() error {
	if b.MaxDaily <= 0 {
		return fmt.Errorf("%w: max_daily_questions must be positive", ErrInvalidConfig)
	}
	if len(b.Subjects) == 0 {
		return fmt.Errorf("%w: blueprint has no subjects", ErrInvalidConfig)
	}
	seen := map[Subject]bool{}
	for _, s := range b.Subjects {
		if _, ok := ParseSubject(string(s.Subject)); !ok {
			return fmt.Errorf("%w: unknown blueprint subject %q", ErrInvalidConfig, s.Subject)
		}
		if seen[s.Subject] {
			return fmt.Errorf("%w: duplicate blueprint subject %q", ErrInvalidConfig, s.Subject)
		}
		seen[s.Subject] = true
		if s.Total <= 0 {
			return fmt.Errorf("%w: %s total must be positive", ErrInvalidConfig, s.Subject)
		}
		d := s.Difficulty
		if d.Easy < 0 || d.Moderate < 0 || d.Hard < 0 || d.Total() != s.Total {
			return fmt.Errorf("%w: %s difficulty distribution %+v does not sum to %d", ErrInvalidConfig, s.Subject, d, s.Total)
		}
		formats := 0
		for _, f := range s.Formats {
			if !knownFormat(f.Format) || f.Count < 0 {
				return fmt.Errorf("%w: %s has invalid format entry %+v", ErrInvalidConfig, s.Subject, f)
			}
			formats += f.Count
		}
		if formats != s.Total {
			return fmt.Errorf("%w: %s format distribution sums to %d, want %d", ErrInvalidConfig, s.Subject, formats, s.Total)
		}
	}
	if total := b.Total(); total > b.MaxDaily {
		return fmt.Errorf("%w: blueprint total %d exceeds daily max of %d questions", ErrInvalidConfig, total, b.MaxDaily)
	}
	return nil
}

// LoadBlueprint reads the embedded blueprint, or PAPER_BLUEPRINT_YAML when set.
func LoadBlueprint() (Blueprint, error) {
	data, err := readSpec(blueprintPathEnv, embeddedBlueprintFile)
	if err != nil {
		return Blueprint{}, fmt.Errorf("%w: read blueprint: %v", ErrInvalidConfig, err)
	}
	return ParseBlueprint(data)
}

func ParseBlueprint(data []byte) (Blueprint, error) {
	var b Blueprint
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Blueprint{}, fmt.Errorf("%w: parse blueprint: %v", ErrInvalidConfig, err)
	}
	if err := b.Validate(); err != nil {
		return Blueprint{}, err
	}
	return b, nil
}

func knownFormat(f Format) bool {
	for _, k := range Formats {
		if k == f {
			return true
		}
	}
	return false
}
