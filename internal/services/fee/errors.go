package fee

import "errors"

// Engine errors
var (
	ErrConversionFailed = errors.New("currency conversion failed")
	ErrReadFailed       = errors.New("failed to read record")
	ErrWriteFailed      = errors.New("failed to write fee")
)
