package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrNotFound      = errors.New("analysis not found")
	ErrEmptyInput    = errors.New("empty input")
)
