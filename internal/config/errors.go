package config

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrorCodeReadFailed       ErrorCode = "config_read_failed"
	ErrorCodeParseFailed      ErrorCode = "config_parse_failed"
	ErrorCodeValidationFailed ErrorCode = "config_validation_failed"
)

type Error struct {
	Code ErrorCode
	Path string
	Err  error
}

func (err *Error) Error() string {
	if err == nil {
		return ""
	}

	var prefix string
	switch err.Code {
	case ErrorCodeReadFailed:
		prefix = "failed to read config"
	case ErrorCodeParseFailed:
		prefix = "failed to parse config"
	case ErrorCodeValidationFailed:
		prefix = "invalid configuration"
	default:
		prefix = "config error"
	}

	if err.Path != "" {
		prefix = fmt.Sprintf("%s at %s", prefix, err.Path)
	}
	if err.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, err.Err)
}

func (err *Error) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

func IsErrorCode(err error, code ErrorCode) bool {
	var configErr *Error
	if !errors.As(err, &configErr) {
		return false
	}
	return configErr.Code == code
}

// ValidationError lists every problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Problems) == 0 {
		return "no problems"
	}
	return strings.Join(err.Problems, "; ")
}
