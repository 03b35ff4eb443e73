package serrors

import "fmt"

// Base is a coded error that carries a stable machine-readable code next
// to a human-readable message. API handlers map Base errors to JSON
// error envelopes without string matching.
type Base struct {
	Code    string
	Message string
	Details string
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, details string) *Base {
	return &Base{Code: code, Message: message, Details: details}
}

// WithDetails returns a copy of the error with request-specific details.
// The original stays untouched so sentinel errors remain comparable.
func (e *Base) WithDetails(details string) *Base {
	return &Base{Code: e.Code, Message: e.Message, Details: details}
}
