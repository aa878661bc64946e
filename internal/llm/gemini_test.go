package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema_Tip(t *testing.T) {
	schema := buildGeminiSchema(tipTestSchema().Definition)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if schema.Properties["tip"].Type != genai.TypeString {
		t.Fatalf("expected STRING for tip, got %s", schema.Properties["tip"].Type)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "tip" {
		t.Fatalf("unexpected required fields: %v", schema.Required)
	}
}

func TestBuildGeminiSchema_Nested(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number"},
			},
		},
	}

	schema := buildGeminiSchema(def)

	if len(schema.Properties["level"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["level"].Enum))
	}
	if schema.Properties["scores"].Type != genai.TypeArray {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != genai.TypeNumber {
		t.Fatalf("expected NUMBER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	if got := mapGeminiStopReason(resp); got != "max_tokens" {
		t.Fatalf("expected max_tokens, got %q", got)
	}
	if got := mapGeminiStopReason(&genai.GenerateContentResponse{}); got != "end" {
		t.Fatalf("expected end, got %q", got)
	}
}
