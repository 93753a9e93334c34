package training

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidProgramState = errors.New("invalid program state")
	ErrNotFound            = errors.New("not found")
)
