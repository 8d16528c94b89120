package constants

import "errors"

// Errors
var (
	ErrUnexpectedResponse = errors.New("unexpected HarperDB response")
	ErrNoURL              = errors.New("endpoint url not set")
	ErrNoMarshaler        = errors.New("marshaler is not set")
	ErrNoUnmarshaler      = errors.New("unmarshaler is not set")
	ErrNoCredentials      = errors.New("username and password are required")
)
