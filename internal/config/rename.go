package config

import (
	"fmt"
	"time"

	"github.com/aidanlsb/hangar/internal/item"
)

// Duration is a time.Duration written as a string ("25ms", "3s") in TOML and
// YAML files.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// RenameConfig holds retry settings for directory moves. Zero fields fall
// back to item.DefaultRetryPolicy.
type RenameConfig struct {
	InitialInterval Duration `toml:"initial_interval" yaml:"initial_interval,omitempty"`
	Multiplier      float64  `toml:"multiplier" yaml:"multiplier,omitempty"`
	MaxInterval     Duration `toml:"max_interval" yaml:"max_interval,omitempty"`
	MaxElapsed      Duration `toml:"max_elapsed" yaml:"max_elapsed,omitempty"`
	MaxAttempts     int      `toml:"max_attempts" yaml:"max_attempts,omitempty"`
}

// IsZero reports whether no field is set.
func (r RenameConfig) IsZero() bool {
	return r == RenameConfig{}
}

// Validate rejects values that can never be meant.
func (r RenameConfig) Validate() error {
	switch {
	case r.InitialInterval < 0, r.MaxInterval < 0, r.MaxElapsed < 0:
		return fmt.Errorf("rename: durations must not be negative")
	case r.Multiplier != 0 && r.Multiplier < 1:
		return fmt.Errorf("rename: multiplier must be at least 1, got %v", r.Multiplier)
	case r.MaxAttempts < 0:
		return fmt.Errorf("rename: max_attempts must not be negative")
	}
	return nil
}

// Merge returns r with every field that is set in over replaced.
func (r RenameConfig) Merge(over RenameConfig) RenameConfig {
	if over.InitialInterval != 0 {
		r.InitialInterval = over.InitialInterval
	}
	if over.Multiplier != 0 {
		r.Multiplier = over.Multiplier
	}
	if over.MaxInterval != 0 {
		r.MaxInterval = over.MaxInterval
	}
	if over.MaxElapsed != 0 {
		r.MaxElapsed = over.MaxElapsed
	}
	if over.MaxAttempts != 0 {
		r.MaxAttempts = over.MaxAttempts
	}
	return r
}

// Policy converts r to a retry policy with defaults filled in.
func (r RenameConfig) Policy() item.RetryPolicy {
	return item.RetryPolicy{
		InitialInterval: time.Duration(r.InitialInterval),
		Multiplier:      r.Multiplier,
		MaxInterval:     time.Duration(r.MaxInterval),
		MaxElapsed:      time.Duration(r.MaxElapsed),
		MaxAttempts:     r.MaxAttempts,
	}.WithDefaults()
}
