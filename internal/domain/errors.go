package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidTarget  = errors.New("invalid request: exactly one of version id or environment id must be set")
)
