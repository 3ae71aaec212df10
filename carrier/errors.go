package carrier

import "fmt"

// RejectionError is a structured 4xx/5xx answer from the carrier. The record
// it belongs to is failed, the batch keeps going.
type RejectionError struct {
	Status int
	Body   string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("carrier rejected request: status=%d body=%s", e.Status, e.Body)
}

// AuthError means no request can be authorized at all, so the whole batch
// must stop before the first carrier call.
type AuthError struct {
	msg string
}

func (e *AuthError) Error() string {
	return e.msg
}

func NewAuthError(err error) *AuthError {
	return &AuthError{msg: "token acquisition failed: " + err.Error()}
}

func (e *AuthError) Wrap(params map[string]interface{}) {
	for k, v := range params {
		e.msg += fmt.Sprintf(" %s=%v ", k, v)
	}
}
