package gemini

import "errors"

// Sentinel errors. Generators wrap these in fortune.GenerationError.
var (
	ErrMissingAPIKey    = errors.New("gemini api key is not configured")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNoCandidates     = errors.New("response has no candidates")
	ErrBlocked          = errors.New("prompt blocked")
)
