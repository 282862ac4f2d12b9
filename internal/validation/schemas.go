package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas, embedded so the validator has no filesystem
// dependency at runtime.
var schemaSources = map[string]string{
	"recommendation-request": `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["favorite_movie_ids"],
		"properties": {
			"favorite_movie_ids": {
				"type": "array",
				"items": {"type": "integer"}
			}
		},
		"additionalProperties": false
	}`,
	"movie-batch-request": `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["movie_ids"],
		"properties": {
			"movie_ids": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "integer"}
			}
		},
		"additionalProperties": false
	}`,
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// SchemaValidator handles JSON schema validation for API request bodies.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() (*SchemaValidator, error) {
	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema, len(schemaSources))}

	for name, source := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}
	return sv, nil
}

// ValidateBody validates raw request bytes against a named schema.
func (sv *SchemaValidator) ValidateBody(schemaName string, body []byte) *ValidationResult {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "schema", Message: fmt.Sprintf("schema %q not found", schemaName)}},
		}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "body", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out
}
