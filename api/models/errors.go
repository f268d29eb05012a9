package models

import "errors"

var (
	// ErrInvalidRequest marks a body that could not be decoded.
	ErrInvalidRequest = errors.New("invalid request body")
	// ErrInvalidParams marks rejected query or path parameters.
	ErrInvalidParams = errors.New("invalid parameters")
)
