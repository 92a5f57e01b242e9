package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const lessonSchemaJSON = `{
  "type": "object",
  "required": ["id", "title", "level", "steps"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z]+(-[a-z0-9]+)*$"},
    "title": {"type": "string", "minLength": 1},
    "level": {"enum": ["Базовый", "Расширенный"]},
    "icon": {"type": "string"},
    "description": {"type": "string"},
    "duration": {"type": "string"},
    "achievements": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "initialState": {"type": "object"},
    "data": {"type": "object"},
    "steps": {
      "type": "array",
      "minItems": 2,
      "items": {
        "type": "object",
        "required": ["title", "action", "instruction", "simulatorType"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "instruction": {"type": "string"},
          "action": {"type": "string", "minLength": 1},
          "expectedText": {"type": "string", "minLength": 1},
          "highlightElement": {"type": "string"},
          "simulatorType": {"enum": ["intro", "messenger", "phone", "shop", "gosuslugi", "complete"]}
        },
        "additionalProperties": false
      }
    }
  }
}`

const testSchemaJSON = `{
  "type": "object",
  "required": ["id", "topic", "title", "passingScore", "questions"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "topic": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "passingScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "type", "question", "options", "correct"],
        "properties": {
          "id": {"type": "integer"},
          "type": {"enum": ["single", "multiple"]},
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
          "correct": {
            "oneOf": [
              {"type": "integer", "minimum": 0},
              {"type": "array", "minItems": 1, "items": {"type": "integer", "minimum": 0}}
            ]
          },
          "explanation": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  }
}`

var (
	schemaOnce   sync.Once
	lessonSchema *jsonschema.Schema
	testSchema   *jsonschema.Schema
	schemaErr    error
)

func compiledSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for name, src := range map[string]string{
			"lesson.json": lessonSchemaJSON,
			"test.json":   testSchemaJSON,
		} {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
			if err != nil {
				schemaErr = fmt.Errorf("parse %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				schemaErr = fmt.Errorf("add %s: %w", name, err)
				return
			}
		}
		if lessonSchema, schemaErr = c.Compile("lesson.json"); schemaErr != nil {
			return
		}
		testSchema, schemaErr = c.Compile("test.json")
	})
	return lessonSchema, testSchema, schemaErr
}

// validateDocument checks a YAML-decoded document against a compiled schema.
// The document is re-read as JSON so numbers reach the validator in the form
// it expects.
func validateDocument(schema *jsonschema.Schema, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return schema.Validate(inst)
}
