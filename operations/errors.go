package operations

import "errors"

var (
	ErrStagePanicked   = errors.New("stage panicked")
	ErrPipelineInvalid = errors.New("pipeline invalid")
	ErrPartitionFailed = errors.New("partition failed")
)
