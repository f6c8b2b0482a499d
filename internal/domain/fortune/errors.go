package fortune

import (
	"errors"
	"fmt"
)

// Kind tells which remote model a GenerationError came from.
type Kind string

// Generation kinds.
const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Sentinel errors.
var (
	// ErrMalformedResponse means the text model output is not the expected JSON document.
	ErrMalformedResponse = errors.New("malformed fortune response")
	// ErrNoTalisman means the image model answered without any inline image.
	ErrNoTalisman = errors.New("Talisman generation failed") //nolint:stylecheck,revive // user-visible wording kept verbatim
	ErrNotDataURI = errors.New("image reference is not a base64 data URI")
)

// GenerationError is the single failure type of both generation clients.
type GenerationError struct {
	Kind Kind
	Err  error
}

// NewGenerationError wraps err as a failure of kind k.
func NewGenerationError(k Kind, err error) *GenerationError {
	return &GenerationError{Kind: k, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s generation failed", e.Kind)
	}
	if errors.Is(e.Err, ErrNoTalisman) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s generation failed: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AsGenerationError extracts a GenerationError from err's chain.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
