package ingest

import "errors"

// Sentinel errors for raw input decoding.
var (
	ErrDecode        = errors.New("decode input")
	ErrUnknownFormat = errors.New("unknown table format")
)
