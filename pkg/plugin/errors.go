package plugin

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKey             = errors.New("missing parameter")
	ErrWrongType              = errors.New("parameter has the wrong type")
	ErrInvalidValue           = errors.New("invalid parameter value")
	ErrConflict               = errors.New("conflicting parameters")
	ErrUnusedKey              = errors.New("unused parameter")
	ErrUnknownPlugin          = errors.New("unknown plugin")
	ErrUnsupportedCombination = errors.New("unsupported strategy combination")
)

// ConfigError reports a construction failure caused by a plugin parameter
type ConfigError struct {
	Plugin string // Plugin or class name being constructed
	Key    string // Offending parameter, empty when not tied to a single key
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Plugin, e.Err)
	}
	return fmt.Sprintf("%s: parameter %q: %v", e.Plugin, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Errorf builds a ConfigError whose cause wraps kind with a formatted message
func Errorf(pluginName, key string, kind error, format string, args ...any) error {
	return &ConfigError{
		Plugin: pluginName,
		Key:    key,
		Err:    fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}
