// Package catalog holds the static table of configurable Firefox preferences
// and the registry of categories used to select them.
package catalog

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
)

// Catalog is an ordered, read-only table of settings.
type Catalog struct {
	settings []Setting
	index    map[string]int
}

// New builds a catalog from the given settings, keeping their order.
// Duplicate ids and malformed definitions are rejected.
func New(settings ...Setting) (*Catalog, error) {
	c := &Catalog{
		settings: make([]Setting, 0, len(settings)),
		index:    make(map[string]int, len(settings)),
	}
	for _, s := range settings {
		if err := s.validateDefinition(); err != nil {
			return nil, err
		}
		if _, exists := c.index[s.ID]; exists {
			return nil, fmt.Errorf("duplicate setting id: %s", s.ID)
		}
		c.index[s.ID] = len(c.settings)
		c.settings = append(c.settings, s)
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for static tables.
func MustNew(settings ...Setting) *Catalog {
	c, err := New(settings...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of settings.
func (c *Catalog) Len() int {
	return len(c.settings)
}

// Settings returns every setting in catalog order.
func (c *Catalog) Settings() []Setting {
	out := make([]Setting, len(c.settings))
	copy(out, c.settings)
	return out
}

// Lookup returns the setting with the given id.
func (c *Catalog) Lookup(id string) (Setting, bool) {
	i, ok := c.index[id]
	if !ok {
		return Setting{}, false
	}
	return c.settings[i], true
}

// Get is like Lookup but returns an UnknownSettingError for unknown ids.
func (c *Catalog) Get(id string) (Setting, error) {
	s, ok := c.Lookup(id)
	if !ok {
		return Setting{}, &UnknownSettingError{ID: id}
	}
	return s, nil
}

// InCategories returns the settings belonging to any of the given categories,
// in catalog order.
func (c *Catalog) InCategories(ids []CategoryID) []Setting {
	var out []Setting
	for _, s := range c.settings {
		if s.Intersects(ids) {
			out = append(out, s)
		}
	}
	return out
}

// Match returns the settings whose id matches a glob pattern such as
// "privacy.*" or "network.http.*". Dots act as separators, so "*" stays
// inside a single segment and "**" spans several.
func (c *Catalog) Match(pattern string) ([]Setting, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var out []Setting
	for _, s := range c.settings {
		if g.Match(s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ValidateValues checks every entry against the catalog and returns all
// problems found, or nil. Unknown ids yield UnknownSettingError entries.
func (c *Catalog) ValidateValues(values map[string]Value) error {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result *multierror.Error
	for _, id := range ids {
		s, ok := c.Lookup(id)
		if !ok {
			result = multierror.Append(result, &UnknownSettingError{ID: id})
			continue
		}
		if err := s.Validate(values[id]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
