package elements

import "errors"

var (
	ErrDatasetInvalid = errors.New("dataset invalid")
)
