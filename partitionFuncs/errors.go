package partitionFuncs

import "errors"

var (
	ErrInvalidPartitionOptions = errors.New("invalid partition options")
)
