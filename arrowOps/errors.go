package arrowops

import "errors"

var (
	ErrUnsupportedDataType = errors.New("unsupported data type")
	ErrNoDataLeft          = errors.New("no data left")
	ErrSchemasNotEqual     = errors.New("schemas not equal")
	ErrEmptySchema         = errors.New("schema has no fields")
)
