package connection

import (
	"errors"
	"fmt"
)

// ErrServer matches every *ServerError with errors.Is.
var ErrServer = errors.New("HarperDB server error")

// ServerError is an operation failure reported by the server through an
// error HTTP status. Message is the body's "error" field.
type ServerError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	if target == ErrServer {
		return true
	}
	t, ok := target.(*ServerError)
	if !ok {
		return false
	}
	return t == nil || (t.StatusCode == e.StatusCode && t.Message == e.Message)
}

// GoString includes the status for %#v in test failures.
func (e *ServerError) GoString() string {
	return fmt.Sprintf("&connection.ServerError{StatusCode:%d, Message:%q}", e.StatusCode, e.Message)
}

// MessageResult is the body returned by operations that only report a message.
type MessageResult struct {
	Message string `json:"message"`
}
