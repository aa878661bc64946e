package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func tipTestSchema() *Schema {
	return &Schema{
		Name:        "test-tip",
		Description: "A study tip",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tip": map[string]any{"type": "string", "minLength": 1},
			},
			"required":             []any{"tip"},
			"additionalProperties": false,
		},
	}
}

func questionTestSchema() *Schema {
	return &Schema{
		Name: "test-question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":   map[string]any{"type": "string"},
				"options":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"question", "options"},
		},
	}
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_Tip(t *testing.T) {
	if err := validateResponse(tipTestSchema(), json.RawMessage(`{"tip":"Mind the accents."}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_EmptyTip(t *testing.T) {
	assertInvalid(t, validateResponse(tipTestSchema(), json.RawMessage(`{"tip":""}`)))
}

func TestValidateResponse_ExtraField(t *testing.T) {
	assertInvalid(t, validateResponse(tipTestSchema(), json.RawMessage(`{"tip":"ok","score":3}`)))
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	assertInvalid(t, validateResponse(questionTestSchema(), json.RawMessage(`{"question":"Capital of Italy?"}`)))
}

func TestValidateResponse_WrongType(t *testing.T) {
	assertInvalid(t, validateResponse(questionTestSchema(), json.RawMessage(`{"question":"Q","options":"Rome"}`)))
}

func TestValidateResponse_InvalidEnum(t *testing.T) {
	raw := json.RawMessage(`{"question":"Q","options":["a","b"],"difficulty":"expert"}`)
	assertInvalid(t, validateResponse(questionTestSchema(), raw))
}

func TestValidateResponse_ArrayItems(t *testing.T) {
	valid := json.RawMessage(`{"question":"Q","options":["Rome","Milan"],"difficulty":"easy"}`)
	if err := validateResponse(questionTestSchema(), valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	assertInvalid(t, validateResponse(questionTestSchema(), json.RawMessage(`{"question":"Q","options":[1,2]}`)))
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	assertInvalid(t, validateResponse(tipTestSchema(), json.RawMessage(`{not json}`)))
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	assertInvalid(t, validateResponse(tipTestSchema(), json.RawMessage(``)))
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`"free text"`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}
