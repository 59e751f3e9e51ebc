package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GenericMessage is shown when the backend gives us nothing usable.
const GenericMessage = "request failed, please try again"

// Error is a failed backend exchange. Message carries the server-supplied
// text when the payload had one, else a generic fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// decodeError extracts the {"message": ...} payload the backend uses for
// failures.
func decodeError(status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &Error{Status: status, Message: GenericMessage}
	}
	return &Error{Status: status, Message: payload.Message}
}

// UserMessage returns the text to surface for any error coming out of the
// client: the server message when present, a generic fallback otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return GenericMessage
}
