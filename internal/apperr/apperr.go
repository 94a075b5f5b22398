package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries a stable numeric code alongside the HTTP status handlers
// should answer with. Codes are part of the API contract and never change.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

var (
	ErrVoteType = &Error{Code: 100006, Message: "vote type must be one of up, down", Status: http.StatusBadRequest}

	ErrUserNotFound     = &Error{Code: 200006, Message: "user not found", Status: http.StatusNotFound}
	ErrQuestionNotFound = &Error{Code: 300001, Message: "question not found", Status: http.StatusNotFound}
	ErrAnswerNotFound   = &Error{Code: 310001, Message: "answer not found", Status: http.StatusNotFound}
	ErrCommentNotFound  = &Error{Code: 320001, Message: "comment not found", Status: http.StatusNotFound}
	ErrTopicNotFound    = &Error{Code: 400001, Message: "topic not found", Status: http.StatusNotFound}
	ErrArticleNotFound  = &Error{Code: 500001, Message: "article not found", Status: http.StatusNotFound}
)

// StatusOf maps any error to an HTTP status, defaulting to 500 for
// storage and other unexpected failures.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Payload returns the JSON body for an error response.
func Payload(err error) map[string]interface{} {
	var ae *Error
	if errors.As(err, &ae) {
		return map[string]interface{}{"code": ae.Code, "error": ae.Message}
	}
	return map[string]interface{}{"error": err.Error()}
}
