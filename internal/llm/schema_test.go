package llm

import (
	"strings"
	"testing"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["score"],
	"additionalProperties": false
}`

func TestSchemaSetValidate(t *testing.T) {
	set, err := NewSchemaSet(map[string]string{"eval": testSchema})
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}

	testCases := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "valid", data: `{"score": 0.8}`, wantErr: false},
		{name: "boundary low", data: `{"score": 0}`, wantErr: false},
		{name: "boundary high", data: `{"score": 1}`, wantErr: false},
		{name: "out of range", data: `{"score": 1.5}`, wantErr: true},
		{name: "missing required", data: `{}`, wantErr: true},
		{name: "wrong type", data: `{"score": "high"}`, wantErr: true},
		{name: "extra property", data: `{"score": 0.5, "extra": true}`, wantErr: true},
		{name: "not json", data: `score: 0.5`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := set.Validate("eval", []byte(tc.data))
			if tc.wantErr && err == nil {
				t.Errorf("expected validation error for %s", tc.data)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestSchemaSetUnknownSchema(t *testing.T) {
	set, err := NewSchemaSet(map[string]string{"eval": testSchema})
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}

	err = set.Validate("missing", []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), "unknown schema") {
		t.Errorf("expected unknown schema error, got: %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain object",
			content: `{"a": 1}`,
			want:    `{"a": 1}`,
		},
		{
			name:    "markdown fence",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "bare fence",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "surrounding prose",
			content: "Here is the result:\n{\"a\": 1}\nHope that helps!",
			want:    `{"a": 1}`,
		},
		{
			name:    "no object",
			content: "I could not process that document.",
			want:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractJSON(tc.content)
			if got != tc.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}
