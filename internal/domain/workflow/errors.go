package workflow

import "errors"

// Sentinel errors.
var (
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrStaleOutcome      = errors.New("stale outcome")
	ErrIncompleteOutcome = errors.New("outcome reported success without result or talisman")
)

// FailureMessage is the only error text a user ever sees. Causes are logged.
const FailureMessage = "天机不可泄露，或者是边牧觉得你太帅/美，网线被它嫉妒得咬断了！"
