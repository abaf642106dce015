package model

import "errors"

var (
	// ErrNotConfigured means the planner credential is missing. Terminal and
	// operator-actionable; the bridge surfaces the message verbatim.
	ErrNotConfigured = errors.New("Gemini is not configured. Set GEMINI_API_KEY in environment or .env.")
)

// ProviderError is a structured failure from an external provider call.
type ProviderError struct {
	Code       string
	Message    string
	Retryable  bool
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
