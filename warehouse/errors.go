package warehouse

import "errors"

var (
	ErrInvalidJob      = errors.New("invalid job")
	ErrIngestionFailed = errors.New("ingestion failed")
)
