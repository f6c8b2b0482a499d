package fortune

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var schemaLoader = gojsonschema.NewGoLoader(JSONSchema())

// Parse validates raw model output against the response schema and decodes it.
// Every failure is a text GenerationError wrapping ErrMalformedResponse.
func Parse(raw string) (Result, error) {
	doc := strings.TrimSpace(raw)
	if doc == "" {
		return Result{}, NewGenerationError(KindText, fmt.Errorf("%w: empty document", ErrMalformedResponse))
	}

	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return Result{}, NewGenerationError(KindText, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Result{}, NewGenerationError(KindText, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; ")))
	}

	var out Result
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return Result{}, NewGenerationError(KindText, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return out, nil
}
