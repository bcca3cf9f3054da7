package candidate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const responseSchemaURL = "schema://candidate-response.json"

// Field presence is left to the validator so rejections carry a precise reason;
// the schema pins shapes and types.
const responseSchemaJSON = `{
  "type": "object",
  "required": ["question"],
  "properties": {
    "question": {
      "type": "object",
      "properties": {
        "subject": {"type": "string"},
        "topic": {"type": "string"},
        "syllabusUnit": {"type": "string"},
        "conceptTag": {"type": "string"},
        "questionFormat": {"type": "string"},
        "sourceType": {"type": "string"},
        "questionText": {"type": "string"},
        "options": {
          "type": "object",
          "properties": {
            "A": {"type": "string"},
            "B": {"type": "string"},
            "C": {"type": "string"},
            "D": {"type": "string"}
          }
        },
        "correctOption": {"type": "string"},
        "explanation": {"type": "string"},
        "difficulty": {"type": "string"},
        "probabilityScore": {"type": ["number", "string", "null"]}
      }
    },
    "hashSignature": {"type": ["string", "null"]},
    "confidence": {"type": ["number", "null"]},
    "verificationFlag": {"type": ["string", "null"]},
    "source": {"type": ["string", "null"]}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ResponseSchema returns the response schema document, for sources that can
// request structured output.
func ResponseSchema() json.RawMessage { return json.RawMessage(responseSchemaJSON) }

// QuestionSchema is the strict shape of the question object alone, with every
// field required.
func QuestionSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["subject","topic","syllabusUnit","conceptTag","questionFormat","sourceType","questionText","options","correctOption","explanation","difficulty","probabilityScore"],
  "properties": {
    "subject": {"type": "string"},
    "topic": {"type": "string"},
    "syllabusUnit": {"type": "string"},
    "conceptTag": {"type": "string"},
    "questionFormat": {"type": "string"},
    "sourceType": {"type": "string"},
    "questionText": {"type": "string"},
    "options": {
      "type": "object",
      "additionalProperties": false,
      "required": ["A","B","C","D"],
      "properties": {"A": {"type": "string"}, "B": {"type": "string"}, "C": {"type": "string"}, "D": {"type": "string"}}
    },
    "correctOption": {"type": "string", "enum": ["A","B","C","D"]},
    "explanation": {"type": "string"},
    "difficulty": {"type": "string"},
    "probabilityScore": {"type": "number"}
  }
}`)
}

func responseSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(responseSchemaJSON)))
		if err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(responseSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(responseSchemaURL)
	})
	return compiledSchema, schemaErr
}

func validateSchema(raw []byte) error {
	schema, err := responseSchema()
	if err != nil {
		return err
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
