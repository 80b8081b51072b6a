package catalog

import (
	"errors"
	"fmt"
)

// ErrNonFinite is returned for NaN and infinite numbers.
var ErrNonFinite = errors.New("number is not finite")

// UnknownSettingError is returned when a setting id is not in the catalog.
type UnknownSettingError struct {
	ID string
}

func (e *UnknownSettingError) Error() string {
	return fmt.Sprintf("unknown setting: %s", e.ID)
}

// InvalidValueError is returned when a value does not fit a setting's declared
// type, range or options.
type InvalidValueError struct {
	ID     string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.ID, e.Reason)
}
