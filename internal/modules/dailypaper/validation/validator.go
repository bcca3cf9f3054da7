package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
)

const (
	minQuestionWords    = 22
	minQuestionLines    = 2
	minOptionWords      = 5
	minSyllabusUnitLen  = 3
	minConceptTagLen    = 2
	numericTolerance    = 0.02
	maxProbabilityScore = 1.0
)

// Rule names a failed check. Stable, safe to aggregate on.
type Rule string

const (
	RuleMissingField      Rule = "missing_field"
	RuleSubject           Rule = "subject"
	RuleTopic             Rule = "topic"
	RuleCorrectOption     Rule = "correct_option"
	RuleDifficulty        Rule = "difficulty"
	RuleSourceType        Rule = "source_type"
	RuleFormat            Rule = "question_format"
	RuleSyllabusUnit      Rule = "syllabus_unit"
	RuleConceptTag        Rule = "concept_tag"
	RuleOptions           Rule = "options"
	RuleVagueWording      Rule = "vague_wording"
	RuleContradictory     Rule = "contradictory_wording"
	RuleSpeculative       Rule = "speculative_wording"
	RuleDepth             Rule = "question_depth"
	RuleFormatMarkers     Rule = "format_markers"
	RuleNumericalMismatch Rule = "numerical_mismatch"
	RuleUnits             Rule = "units"
	RuleSyllabusSafety    Rule = "syllabus_safety"
	RuleProbability       Rule = "probability_score"
)

// Rejection explains why a candidate failed.
type Rejection struct {
	Rule   Rule
	Reason string
}

func (r *Rejection) Error() string { return fmt.Sprintf("%s: %s", r.Rule, r.Reason) }

func reject(rule Rule, format string, args ...any) *Rejection {
	return &Rejection{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

var (
	vaguePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)all of the above`),
		regexp.MustCompile(`(?i)none of the above`),
		regexp.MustCompile(`(?i)cannot be determined`),
		regexp.MustCompile(`(?i)\bmay be\b`),
	}
	contradictoryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)always[^.]{0,80}never`),
		regexp.MustCompile(`(?i)increases[^.]{0,80}decreases`),
		regexp.MustCompile(`(?i)both true and false`),
	}
	speculativePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmight\b`),
		regexp.MustCompile(`(?i)\bcould be\b`),
		regexp.MustCompile(`(?i)\bpossibly\b`),
		regexp.MustCompile(`(?i)approximately maybe`),
	}
	syllabusUnsafePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)outside\s+NCERT`),
		regexp.MustCompile(`(?i)not\s+in\s+NCERT`),
		regexp.MustCompile(`(?i)controversial`),
		regexp.MustCompile(`(?i)unverified`),
	}

	// Multi-letter units stand alone; single letters only count after a number
	// so that "A" in "Statement A" is not a unit.
	namedUnitPattern  = regexp.MustCompile(`(^|[^A-Za-z0-9])(m/s\^2|m/s|m s-1|mol|kg|cm|mm|mL|Pa|ohm|Hz)([^A-Za-z0-9]|$)`)
	letterUnitPattern = regexp.MustCompile(`\d\s*(N|J|W|K|g|L|V|A)\b`)
	numberPattern     = regexp.MustCompile(`-?\d+(\.\d+)?`)
)

// Validator checks one candidate against the catalogue. It has no state
// beyond the catalogue and is safe for concurrent use.
type Validator struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate returns nil when q is acceptable.
func (v *Validator) Validate(q *candidate.Question) *Rejection {
	if q == nil {
		return reject(RuleMissingField, "question payload missing")
	}
	if r := requireFields(q); r != nil {
		return r
	}

	subject, ok := catalog.ParseSubject(q.Subject)
	if !ok {
		return reject(RuleSubject, "invalid subject %q", q.Subject)
	}
	if !v.catalog.IsAllowedTopic(subject, q.Topic) {
		return reject(RuleTopic, "topic not allowed: %s", q.Topic)
	}
	if _, ok := q.Options.Get(q.CorrectOption); !ok {
		return reject(RuleCorrectOption, "correct option must be A/B/C/D")
	}
	switch catalog.Difficulty(q.Difficulty) {
	case catalog.Easy, catalog.Medium, catalog.Moderate, catalog.Hard:
	default:
		return reject(RuleDifficulty, "difficulty must be easy/medium/moderate/hard")
	}
	switch catalog.SourceType(q.SourceType) {
	case catalog.Conceptual, catalog.Numerical, catalog.Application:
	default:
		return reject(RuleSourceType, "sourceType must be Conceptual/Numerical/Application")
	}
	if !knownFormat(q.QuestionFormat) {
		return reject(RuleFormat, "invalid questionFormat %q", q.QuestionFormat)
	}
	unit := strings.TrimSpace(q.SyllabusUnit)
	if len(unit) < minSyllabusUnitLen {
		return reject(RuleSyllabusUnit, "syllabusUnit missing or invalid")
	}
	if !v.catalog.IsOfficialUnit(subject, q.SyllabusUnit) {
		return reject(RuleSyllabusUnit, "syllabusUnit not in official unit list for %s", subject)
	}
	if !v.catalog.UnitAllowedForTopic(subject, q.Topic, q.SyllabusUnit) {
		return reject(RuleSyllabusUnit, "syllabusUnit %q not registered for topic %q", q.SyllabusUnit, q.Topic)
	}
	if len(strings.TrimSpace(q.ConceptTag)) < minConceptTagLen {
		return reject(RuleConceptTag, "conceptTag missing or invalid")
	}

	if r := checkOptions(q.Options); r != nil {
		return r
	}
	if r := checkWording(q); r != nil {
		return r
	}
	if r := checkDepth(q.QuestionText); r != nil {
		return r
	}
	if r := checkFormatMarkers(catalog.Format(q.QuestionFormat), q.QuestionText); r != nil {
		return r
	}

	correct, _ := q.Options.Get(q.CorrectOption)
	if strings.TrimSpace(correct) == "" {
		return reject(RuleCorrectOption, "correct option text missing")
	}
	if catalog.SourceType(q.SourceType) == catalog.Numerical {
		if r := checkNumerical(correct, q.Explanation); r != nil {
			return r
		}
	}
	if HasUnit(q.QuestionText) {
		found := false
		for _, opt := range q.Options.Values() {
			if HasUnit(opt) {
				found = true
				break
			}
		}
		if !found {
			return reject(RuleUnits, "question uses units but options do not include units")
		}
	}
	if subject == catalog.Biology {
		if matchAny(syllabusUnsafePatterns, q.QuestionText, q.Explanation) {
			return reject(RuleSyllabusSafety, "biology statement not aligned with NCERT-safe wording")
		}
	}

	p := q.ProbabilityScore
	if !p.Numeric || math.IsNaN(p.Value) || p.Value < 0 || p.Value > maxProbabilityScore {
		return reject(RuleProbability, "probability score must be between 0 and 1")
	}
	return nil
}

func requireFields(q *candidate.Question) *Rejection {
	fields := []struct {
		name  string
		value string
	}{
		{"subject", q.Subject},
		{"topic", q.Topic},
		{"questionText", q.QuestionText},
		{"correctOption", q.CorrectOption},
		{"explanation", q.Explanation},
		{"difficulty", q.Difficulty},
		{"conceptTag", q.ConceptTag},
		{"sourceType", q.SourceType},
		{"questionFormat", q.QuestionFormat},
		{"syllabusUnit", q.SyllabusUnit},
	}
	for _, f := range fields {
		if f.value == "" {
			return reject(RuleMissingField, "missing field: %s", f.name)
		}
	}
	if q.Options == (candidate.Options{}) {
		return reject(RuleMissingField, "missing field: options")
	}
	if !q.ProbabilityScore.Present {
		return reject(RuleMissingField, "missing field: probabilityScore")
	}
	return nil
}

func checkOptions(o candidate.Options) *Rejection {
	values := o.Values()
	seen := make(map[string]bool, len(values))
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
		if values[i] == "" {
			return reject(RuleOptions, "all options must be non-empty")
		}
	}
	for _, v := range values {
		if wordCount(v) < minOptionWords && !hasNumber(v) {
			return reject(RuleOptions, "options must be descriptive (minimum %d words unless numerical)", minOptionWords)
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if seen[key] {
			return reject(RuleOptions, "duplicate options detected")
		}
		seen[key] = true
	}
	return nil
}

func checkWording(q *candidate.Question) *Rejection {
	if matchAny(vaguePatterns, q.QuestionText) {
		return reject(RuleVagueWording, "vague wording detected")
	}
	if matchAny(contradictoryPatterns, q.QuestionText, q.Explanation) {
		return reject(RuleContradictory, "contradictory wording detected")
	}
	if matchAny(speculativePatterns, q.QuestionText, q.Explanation) {
		return reject(RuleSpeculative, "speculative wording not allowed")
	}
	return nil
}

func checkDepth(text string) *Rejection {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines < minQuestionLines {
		return reject(RuleDepth, "question text must span at least %d lines", minQuestionLines)
	}
	if wordCount(text) < minQuestionWords {
		return reject(RuleDepth, "question text too short (minimum %d words)", minQuestionWords)
	}
	return nil
}

func checkFormatMarkers(format catalog.Format, text string) *Rejection {
	lower := strings.ToLower(text)
	switch format {
	case catalog.AssertionReason:
		if !strings.Contains(lower, "assertion") || !strings.Contains(lower, "reason") {
			return reject(RuleFormatMarkers, "Assertion-Reason format requires both Assertion and Reason")
		}
	case catalog.StatementPair:
		if !strings.Contains(lower, "statement i") || !strings.Contains(lower, "statement ii") {
			return reject(RuleFormatMarkers, "Statement I-II format requires Statement I and Statement II")
		}
	case catalog.MultiStatement:
		if !strings.Contains(lower, "following statements") {
			return reject(RuleFormatMarkers, "Multi-Statement format requires a statements block")
		}
	case catalog.CaseBased:
		if !strings.HasPrefix(strings.TrimSpace(text), "Case:") {
			return reject(RuleFormatMarkers, "Case-Based format must start with 'Case:'")
		}
	}
	return nil
}

func checkNumerical(correct, explanation string) *Rejection {
	correctNums := ExtractNumbers(correct)
	if len(correctNums) == 0 {
		return reject(RuleNumericalMismatch, "numerical question requires numeric correct option")
	}
	explNums := ExtractNumbers(explanation)
	if len(explNums) == 0 {
		return reject(RuleNumericalMismatch, "numerical question must include a calculable explanation")
	}
	for _, e := range explNums {
		for _, c := range correctNums {
			if math.Abs(e-c) <= numericTolerance {
				return nil
			}
		}
	}
	return reject(RuleNumericalMismatch, "numerical answer mismatch with explanation")
}

// ExtractNumbers returns every decimal number in s, in order.
func ExtractNumbers(s string) []float64 {
	var out []float64
	for _, m := range numberPattern.FindAllString(s, -1) {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// HasUnit reports whether s carries a recognised physical unit.
func HasUnit(s string) bool {
	return namedUnitPattern.MatchString(s) || letterUnitPattern.MatchString(s)
}

func hasNumber(s string) bool { return numberPattern.MatchString(s) }

func wordCount(s string) int { return len(strings.Fields(s)) }

func matchAny(patterns []*regexp.Regexp, texts ...string) bool {
	for _, p := range patterns {
		for _, t := range texts {
			if p.MatchString(t) {
				return true
			}
		}
	}
	return false
}

func knownFormat(raw string) bool {
	for _, f := range catalog.Formats {
		if string(f) == raw {
			return true
		}
	}
	return false
}
