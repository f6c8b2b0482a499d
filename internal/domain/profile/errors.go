package profile

import "errors"

// ErrInvalidProfile reports a missing or unknown enumerated answer.
var ErrInvalidProfile = errors.New("invalid profile")
