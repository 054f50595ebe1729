package export

import "errors"

// Sentinel errors for export lookups.
var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownLayer = errors.New("unknown layer")
)
