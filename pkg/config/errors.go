package config

import "errors"

var (
	// ErrInvalidYAML indicates trust.yaml failed to parse.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrValidationFailed indicates the loaded configuration failed
	// struct-tag or cross-field validation.
	ErrValidationFailed = errors.New("configuration validation failed")
)
