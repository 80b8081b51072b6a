package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/foxconf/pkg/catalog"
)

// ErrApplyInProgress is returned when APPLY_SETTINGS arrives while another
// apply has not settled.
var ErrApplyInProgress = errors.New("an apply request is already in progress")

// ErrNoLocator is returned by GET_PROFILE_DIR when the gateway has no profile
// locator.
var ErrNoLocator = errors.New("profile discovery is not configured")

// Code tags a failed response so clients can branch without parsing messages.
type Code string

const (
	CodeStorageTimeout        Code = "storage_timeout"
	CodeInvalidSettingsFormat Code = "invalid_settings_format"
	CodeUnknownSetting        Code = "unknown_setting"
	CodeAdapter               Code = "adapter_error"
	CodeApplyInProgress       Code = "apply_in_progress"
	CodeUnknownRequest        Code = "unknown_request"
	CodeInternal              Code = "internal"
)

// StorageTimeoutError reports a storage read that did not settle in time.
type StorageTimeoutError struct {
	Timeout time.Duration
}

func (e *StorageTimeoutError) Error() string {
	return fmt.Sprintf("storage did not respond within %s", e.Timeout)
}

// InvalidSettingsFormatError reports an APPLY_SETTINGS payload that is not a
// flat object of booleans, numbers and strings.
type InvalidSettingsFormatError struct {
	Reason string
	Err    error
}

func (e *InvalidSettingsFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid settings format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid settings format: %s", e.Reason)
}

func (e *InvalidSettingsFormatError) Unwrap() error {
	return e.Err
}

// AdapterError wraps a failure from the storage or download collaborator.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// UnknownRequestError reports a request type the gateway does not handle.
type UnknownRequestError struct {
	Type string
}

func (e *UnknownRequestError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

func codeOf(err error) Code {
	var (
		timeout *StorageTimeoutError
		format  *InvalidSettingsFormatError
		unknown *catalog.UnknownSettingError
		adapter *AdapterError
		kindErr *UnknownRequestError
	)
	switch {
	case errors.As(err, &timeout):
		return CodeStorageTimeout
	case errors.As(err, &format):
		return CodeInvalidSettingsFormat
	case errors.As(err, &unknown):
		return CodeUnknownSetting
	case errors.As(err, &adapter):
		return CodeAdapter
	case errors.Is(err, ErrApplyInProgress):
		return CodeApplyInProgress
	case errors.As(err, &kindErr):
		return CodeUnknownRequest
	default:
		return CodeInternal
	}
}
