package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(c.Topics(Physics)); got != 8 {
		t.Fatalf("physics topics: want=8 got=%d", got)
	}
	if got := len(c.Topics(Chemistry)); got != 24 {
		t.Fatalf("chemistry topics: want=24 got=%d", got)
	}
	if !c.IsAllowedTopic(Chemistry, "SN2") {
		t.Fatalf("SN2 should be an allowed chemistry topic")
	}
	if c.IsAllowedTopic(Physics, "SN2") {
		t.Fatalf("SN2 should not be a physics topic")
	}
	if !c.UnitAllowedForTopic(Physics, "Mechanics", "Laws of Motion") {
		t.Fatalf("Mechanics should map to Laws of Motion")
	}
	if c.UnitAllowedForTopic(Physics, "Optics", "Laws of Motion") {
		t.Fatalf("Optics should not map to Laws of Motion")
	}
	if !c.IsOfficialUnit(Biology, "Genetics and Evolution") {
		t.Fatalf("Genetics and Evolution should be an official biology unit")
	}
}

func TestUnitPoolDeduplicates(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pool := c.UnitPool(Chemistry)
	seen := map[string]bool{}
	for _, u := range pool {
		if seen[u] {
			t.Fatalf("duplicate unit in pool: %s", u)
		}
		seen[u] = true
	}
	if !seen["Organic Compounds Containing Halogens"] {
		t.Fatalf("pool missing halogen unit: %v", pool)
	}
}

func TestBiologyTopicsOverride(t *testing.T) {
	t.Setenv("BIOLOGY_TOPICS_JSON", `["Evolution","Astrology","Plant Kingdom"]`)
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := c.Topics(Biology)
	if len(got) != 2 || got[0] != "Evolution" || got[1] != "Plant Kingdom" {
		t.Fatalf("biology topics: want=[Evolution Plant Kingdom] got=%v", got)
	}
	if c.IsAllowedTopic(Biology, "Animal Kingdom") {
		t.Fatalf("Animal Kingdom should be excluded after override")
	}
	if pool := c.UnitPool(Biology); len(pool) != 2 {
		t.Fatalf("biology unit pool: want=2 got=%v", pool)
	}
}

func TestBiologyTopicsOverrideEmpty(t *testing.T) {
	t.Setenv("BIOLOGY_TOPICS_JSON", `["Astrology"]`)
	_, err := Load(nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestParseRejectsUnknownUnit(t *testing.T) {
	doc := []byte(`
subjects:
  - name: Physics
    units: [Optics]
    topics:
      - name: Optics
        units: [Kinematics]
`)
	if _, err := Parse(doc); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestEmbeddedBlueprint(t *testing.T) {
	b, err := LoadBlueprint()
	if err != nil {
		t.Fatalf("LoadBlueprint: %v", err)
	}
	if b.Total() != 100 || b.MaxDaily != 100 {
		t.Fatalf("blueprint: want total=100 max=100 got total=%d max=%d", b.Total(), b.MaxDaily)
	}
	if b.Subjects[0].Subject != Physics || b.Subjects[2].Subject != Biology {
		t.Fatalf("subject order: got=%v", b.Subjects)
	}
	bio, _ := b.Subject(Biology)
	if bio.Difficulty != (DifficultyCounts{Easy: 20, Moderate: 12, Hard: 8}) {
		t.Fatalf("biology difficulty: got=%+v", bio.Difficulty)
	}
}

func TestBlueprintOverMaxRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bp.yaml")
	doc := `
max_daily_questions: 10
subjects:
  - subject: Physics
    total: 12
    difficulty: {easy: 4, moderate: 4, hard: 4}
    formats:
      - {format: Single Correct, count: 12}
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PAPER_BLUEPRINT_YAML", path)
	if _, err := LoadBlueprint(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestBlueprintSumMismatch(t *testing.T) {
	b := Blueprint{MaxDaily: 100, Subjects: []SubjectBlueprint{{
		Subject:    Physics,
		Total:      10,
		Difficulty: DifficultyCounts{Easy: 3, Moderate: 3, Hard: 3},
		Formats:    []FormatCount{{Format: SingleCorrect, Count: 10}},
	}}}
	if err := b.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}
