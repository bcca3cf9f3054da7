package candidate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Options holds the four answer choices keyed by letter.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

func (o Options) Get(letter string) (string, bool) {
	switch letter {
	case "A":
		return o.A, true
	case "B":
		return o.B, true
	case "C":
		return o.C, true
	case "D":
		return o.D, true
	}
	return "", false
}

func (o Options) Values() []string { return []string{o.A, o.B, o.C, o.D} }

// Score is a probability that sources send either as a number or as a
// numeric string.
type Score struct {
	Value   float64
	Present bool
	Numeric bool
}

func NewScore(v float64) Score { return Score{Value: v, Present: true, Numeric: true} }

func (s *Score) UnmarshalJSON(data []byte) error {
	*s = Score{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		s.Present = true
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			s.Value, s.Numeric = v, true
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Value, s.Present, s.Numeric = v, true, true
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Present || !s.Numeric {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Question is a candidate as proposed by a source. Nothing in it is trusted
// until it passes validation.
type Question struct {
	Subject          string  `json:"subject"`
	Topic            string  `json:"topic"`
	SyllabusUnit     string  `json:"syllabusUnit"`
	ConceptTag       string  `json:"conceptTag"`
	QuestionFormat   string  `json:"questionFormat"`
	SourceType       string  `json:"sourceType"`
	QuestionText     string  `json:"questionText"`
	Options          Options `json:"options"`
	CorrectOption    string  `json:"correctOption"`
	Explanation      string  `json:"explanation"`
	Difficulty       string  `json:"difficulty"`
	ProbabilityScore Score   `json:"probabilityScore"`
}

// Response is one source reply for one slot attempt.
type Response struct {
	Question         *Question `json:"question"`
	HashSignature    string    `json:"hashSignature,omitempty"`
	Confidence       float64   `json:"confidence"`
	VerificationFlag string    `json:"verificationFlag"`
	Source           string    `json:"source,omitempty"`
}

const defaultVerificationFlag = "Estimated"

// DecodeError is returned when a payload does not match the candidate schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode candidate: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Decode validates raw against the response schema and decodes it.
func Decode(raw []byte) (*Response, error) {
	if err := validateSchema(raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if resp.Question == nil {
		return nil, &DecodeError{Err: fmt.Errorf("question missing")}
	}
	if strings.TrimSpace(resp.VerificationFlag) == "" {
		resp.VerificationFlag = defaultVerificationFlag
	}
	return &resp, nil
}
