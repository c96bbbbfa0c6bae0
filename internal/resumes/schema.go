package resumes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func tipSchema(withExplanation bool) map[string]any {
	props := map[string]any{
		"type": map[string]any{"enum": []any{"good", "improve"}},
		"tip":  map[string]any{"type": "string"},
	}
	required := []any{"type", "tip"}
	if withExplanation {
		props["explanation"] = map[string]any{"type": "string"}
		required = append(required, "explanation")
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func categorySchema(withExplanation bool) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 100,
			},
			"tips": map[string]any{
				"type":  "array",
				"items": tipSchema(withExplanation),
			},
		},
		"required": []any{"score", "tips"},
	}
}

// feedbackSchema constrains model output to the Feedback shape. Scores must
// lie in [0,100] and every category must carry a tips array, possibly empty.
var feedbackSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"overallScore": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 100,
		},
		"ATS":          categorySchema(false),
		"toneAndStyle": categorySchema(true),
		"content":      categorySchema(true),
		"structure":    categorySchema(true),
		"skills":       categorySchema(true),
	},
	"required": []any{"overallScore", "ATS", "toneAndStyle", "content", "structure", "skills"},
}

var compiledFeedbackSchema = mustCompileSchema(feedbackSchema)

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("feedback.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("feedback.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ParseFeedback validates raw model output against the feedback schema and
// decodes it. Malformed or out-of-shape output is a terminal parse failure;
// nothing here retries or repairs the payload.
func ParseFeedback(raw []byte) (*Feedback, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledFeedbackSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("feedback does not match schema: %w", err)
	}
	var fb Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return &fb, nil
}
