package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or every problem joined with errors.Join.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.GameDir == "" {
		errs = append(errs, ValidationError{
			Field:   "game_dir",
			Message: "game directory is required",
		})
	}

	// Heap sizes must be known, and the initial heap cannot exceed the maximum
	heapMin, minErr := process.ParseHeapSize(cfg.HeapMin)
	if minErr != nil {
		errs = append(errs, ValidationError{
			Field:   "initial_heap_size",
			Message: minErr.Error(),
		})
	}
	heapMax, maxErr := process.ParseHeapSize(cfg.HeapMax)
	if maxErr != nil {
		errs = append(errs, ValidationError{
			Field:   "max_heap_size",
			Message: maxErr.Error(),
		})
	}
	if minErr == nil && maxErr == nil && heapMin.IsUsed() && heapMax.IsUsed() && heapMin > heapMax {
		errs = append(errs, ValidationError{
			Field:   "initial_heap_size",
			Message: fmt.Sprintf("must not exceed max heap size (%s > %s)", heapMin.Param(), heapMax.Param()),
		})
	}

	if _, err := process.ParseLogLevel(cfg.GameLogLevel); err != nil {
		errs = append(errs, ValidationError{
			Field:   "game_log_level",
			Message: err.Error(),
		})
	}

	// Marker must be a usable regular expression
	if cfg.MarkerPattern == "" {
		errs = append(errs, ValidationError{
			Field:   "marker_pattern",
			Message: "must not be empty",
		})
	} else if _, err := regexp.Compile(cfg.MarkerPattern); err != nil {
		errs = append(errs, ValidationError{
			Field:   "marker_pattern",
			Message: fmt.Sprintf("invalid regular expression: %v", err),
		})
	}

	// Log format must be valid
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	// Relaunch policy
	if cfg.Relaunch < 0 {
		errs = append(errs, ValidationError{
			Field:   "relaunch",
			Message: "must not be negative",
		})
	}
	if cfg.BackoffInitial <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backoff_initial",
			Message: "must be positive",
		})
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		errs = append(errs, ValidationError{
			Field:   "backoff_max",
			Message: "must be >= backoff_initial",
		})
	}
	if cfg.BackoffMultiply < 1.0 {
		errs = append(errs, ValidationError{
			Field:   "backoff_multiply",
			Message: "must be >= 1.0",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
