package ingestion

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrInvalidOptions   = errors.New("invalid source options")
)
