package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownUnit matches any *UnknownUnitError.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrInfeasibleParameters matches any *InfeasibleParametersError.
	ErrInfeasibleParameters = errors.New("infeasible search parameters")
)

// Table names used in ConfigurationError.
const (
	TableTraits = "traits"
	TableCosts  = "costs"
)

// ConfigurationError reports a missing or malformed reference table.
type ConfigurationError struct {
	// Table is the table at fault (TableTraits or TableCosts).
	Table string
	// Key is the offending entry, empty when the table as a whole is bad.
	Key string
	// Reason is a short human readable description.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	msg := e.Table + " table"
	if e.Key != "" {
		msg += fmt.Sprintf(": entry %q", e.Key)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnknownUnitError reports a unit that is absent from the cost table or the
// candidate pool.
type UnknownUnitError struct {
	Unit string
	// Source says where the unit was referenced (e.g. "required_units").
	Source string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("%s: unit %q is not an eligible candidate", e.Source, e.Unit)
}

func (e *UnknownUnitError) Is(target error) bool { return target == ErrUnknownUnit }

// InfeasibleParametersError reports search parameters that admit no search.
type InfeasibleParametersError struct {
	Field  string
	Reason string
}

func (e *InfeasibleParametersError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InfeasibleParametersError) Is(target error) bool { return target == ErrInfeasibleParameters }
