package config

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateName  = errors.New("name already exists")
	ErrDuplicateKey   = errors.New("API key already added")
	ErrDuplicateModel = errors.New("model already exists")
	ErrBuiltinModel   = errors.New("built-in models cannot be removed")
	ErrInvalidInput   = errors.New("invalid input")
)

// ParseError is returned when the store file exists but cannot be decoded
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
