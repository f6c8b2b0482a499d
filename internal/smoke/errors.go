package smoke

import "errors"

// Error constants.
var (
	ErrUnhealthy   = errors.New("service is not healthy")
	ErrUnexpected  = errors.New("unexpected response")
	ErrWaitTimeout = errors.New("session stayed loading too long")
	ErrFailures    = errors.New("smoke run had failures")
)
