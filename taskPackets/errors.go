package taskpackets

import "errors"

var (
	ErrInvalidEvent = errors.New("invalid trigger event")
)
