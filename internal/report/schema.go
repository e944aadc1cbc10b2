package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns the JSON-Schema every jsonl line satisfies.
func BuildRecordJSONSchema() map[string]any {
	runID := map[string]any{"type": "string", "format": "uuid"}

	reading := object(map[string]any{
		"event":  map[string]any{"const": "reading"},
		"run_id": runID,
		"path":   map[string]any{"type": "string"},
	}, "event", "run_id", "path")

	page := object(map[string]any{
		"event":  map[string]any{"const": "page"},
		"run_id": runID,
		"page":   map[string]any{"type": "integer", "minimum": 1},
		"status": map[string]any{"type": "string", "enum": []string{
			string(constants.PageStatusText),
			string(constants.PageStatusImageBased),
			string(constants.PageStatusFailed),
		}},
		"text":    map[string]any{"type": "string"},
		"message": map[string]any{"type": "string"},
	}, "event", "run_id", "page", "status")

	failure := object(map[string]any{
		"event":  map[string]any{"const": "error"},
		"run_id": runID,
		"kind": map[string]any{"type": "string", "enum": []string{
			common.KindUnknown.String(),
			common.KindOpenFailed.String(),
			common.KindExtractionFailed.String(),
			common.KindCanceled.String(),
		}},
		"message": map[string]any{"type": "string"},
	}, "event", "run_id", "kind", "message")

	return map[string]any{"oneOf": []any{reading, page, failure}}
}

func object(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

type recordValidator struct {
	schema *jsonschema.Schema
}

func newRecordValidator() (*recordValidator, error) {
	b, err := json.Marshal(BuildRecordJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &recordValidator{schema: schema}, nil
}

// Validate checks one encoded record.
func (v *recordValidator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
