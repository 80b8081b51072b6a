package catalog

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Option is a labelled choice for a numeric setting rendered as a select.
type Option struct {
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
}

// Setting is an immutable catalog entry describing one browser preference.
type Setting struct {
	ID          string       `json:"id" yaml:"id"`
	Categories  []CategoryID `json:"category" yaml:"category"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	HelpText    string       `json:"helpText,omitempty" yaml:"help_text,omitempty"`
	Type        ValueType    `json:"type" yaml:"type"`
	Default     Value        `json:"default" yaml:"default"`
	Advanced    bool         `json:"advanced,omitempty" yaml:"advanced,omitempty"`

	// Numeric settings only
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step    *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Unit    string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// InCategory reports whether the setting belongs to the category.
func (s Setting) InCategory(id CategoryID) bool {
	return slices.Contains(s.Categories, id)
}

// Intersects reports whether the setting belongs to any of the given categories.
func (s Setting) Intersects(ids []CategoryID) bool {
	for _, id := range ids {
		if s.InCategory(id) {
			return true
		}
	}
	return false
}

// HasRange reports whether the setting declares numeric bounds.
func (s Setting) HasRange() bool {
	return s.Min != nil && s.Max != nil
}

// Validate checks v against the declared type, bounds and options.
func (s Setting) Validate(v Value) error {
	if !v.IsValid() {
		return &InvalidValueError{ID: s.ID, Reason: "value is empty"}
	}
	if v.Type() != s.Type {
		return &InvalidValueError{
			ID:     s.ID,
			Reason: fmt.Sprintf("expected %s, got %s", s.Type, v.Type()),
		}
	}
	if s.Type != TypeNumber {
		return nil
	}

	n, _ := v.AsNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%s is not a finite number", formatNumber(n))}
	}
	if s.Min != nil && n < *s.Min {
		return &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%s is below minimum %s", formatNumber(n), formatNumber(*s.Min))}
	}
	if s.Max != nil && n > *s.Max {
		return &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%s is above maximum %s", formatNumber(n), formatNumber(*s.Max))}
	}
	if len(s.Options) > 0 {
		for _, opt := range s.Options {
			if opt.Value == n {
				return nil
			}
		}
		return &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%s is not one of the allowed options", formatNumber(n))}
	}
	return nil
}

// RangeText describes the valid range of a numeric setting, e.g. "0 - 1000 ms (step 100)".
// It returns an empty string for settings without bounds.
func (s Setting) RangeText() string {
	if s.Type != TypeNumber {
		return ""
	}
	if len(s.Options) > 0 {
		text := ""
		for i, opt := range s.Options {
			if i > 0 {
				text += ", "
			}
			text += fmt.Sprintf("%s = %s", formatNumber(opt.Value), opt.Label)
		}
		return text
	}
	if !s.HasRange() {
		return ""
	}
	text := fmt.Sprintf("%s - %s", formatNumber(*s.Min), formatNumber(*s.Max))
	if s.Unit != "" {
		text += " " + s.Unit
	}
	if s.Step != nil {
		text += fmt.Sprintf(" (step %s)", formatNumber(*s.Step))
	}
	return text
}

// Float returns a pointer to f, for building numeric bounds.
func Float(f float64) *float64 {
	return &f
}

func (s Setting) validateDefinition() error {
	if s.ID == "" {
		return fmt.Errorf("setting id is required")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("setting %s has no categories", s.ID)
	}
	for _, c := range s.Categories {
		if !IsCategory(c) {
			return fmt.Errorf("setting %s references unknown category %q", s.ID, c)
		}
	}
	switch s.Type {
	case TypeBoolean, TypeNumber, TypeString:
	default:
		return fmt.Errorf("setting %s has invalid type %q", s.ID, s.Type)
	}
	if s.Type == TypeNumber && s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return fmt.Errorf("setting %s has min greater than max", s.ID)
	}
	if err := s.Validate(s.Default); err != nil {
		return fmt.Errorf("setting %s has invalid default: %w", s.ID, err)
	}
	return nil
}

// Nudge moves a numeric value by delta steps. Select settings cycle through
// their options; ranged settings are clamped to their bounds. Values of other
// types are returned unchanged.
func (s Setting) Nudge(v Value, delta int) Value {
	n, ok := v.AsNumber()
	if !ok || s.Type != TypeNumber || delta == 0 {
		return v
	}

	if len(s.Options) > 0 {
		idx := 0
		for i, opt := range s.Options {
			if opt.Value == n {
				idx = i
				break
			}
		}
		size := len(s.Options)
		idx = ((idx+delta)%size + size) % size
		return Number(s.Options[idx].Value)
	}

	step := 1.0
	if s.Step != nil && *s.Step > 0 {
		step = *s.Step
	}
	n += step * float64(delta)
	if s.Min != nil && n < *s.Min {
		n = *s.Min
	}
	if s.Max != nil && n > *s.Max {
		n = *s.Max
	}
	return Number(n)
}

// Label returns the option label for v, or v's text for settings without
// options.
func (s Setting) Label(v Value) string {
	if n, ok := v.AsNumber(); ok {
		for _, opt := range s.Options {
			if opt.Value == n {
				return opt.Label
			}
		}
	}
	if s.Unit != "" && v.Type() == TypeNumber {
		return v.String() + " " + s.Unit
	}
	return v.String()
}

// ParseValue converts text into a value of the setting's declared type and
// validates it. Option labels are accepted for select settings.
func (s Setting) ParseValue(text string) (Value, error) {
	var v Value
	switch s.Type {
	case TypeNumber:
		trimmed := strings.TrimSpace(text)
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			for _, opt := range s.Options {
				if strings.EqualFold(opt.Label, trimmed) {
					return Number(opt.Value), nil
				}
			}
			return Value{}, &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%q is not a number", text)}
		}
		v = Number(n)
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return Value{}, &InvalidValueError{ID: s.ID, Reason: fmt.Sprintf("%q is not true or false", text)}
		}
		v = Bool(b)
	default:
		v = String(text)
	}
	if err := s.Validate(v); err != nil {
		return Value{}, err
	}
	return v, nil
}
