// Package profile implements the live configuration model: the selected
// categories and the current value of every setting in scope.
package profile

import (
	"slices"

	"github.com/entrhq/foxconf/pkg/catalog"
)

// Entry is a single setting id and its current value.
type Entry struct {
	ID    string
	Value catalog.Value
}

// Configuration is the mutable selection of categories and setting values.
//
// Every catalog setting with a stored value belongs to at least one selected
// category. Setting ids unknown to the catalog can only enter through Restore
// and are carried through untouched.
//
// Configuration is not safe for concurrent use; one UI session owns one model.
type Configuration struct {
	catalog    *catalog.Catalog
	categories []catalog.CategoryID
	order      []string
	values     map[string]catalog.Value
}

// New returns an empty configuration bound to the catalog.
func New(c *catalog.Catalog) *Configuration {
	return &Configuration{
		catalog: c,
		values:  make(map[string]catalog.Value),
	}
}

// Catalog returns the catalog backing the configuration.
func (c *Configuration) Catalog() *catalog.Catalog {
	return c.catalog
}

// Categories returns the selected categories in selection order.
func (c *Configuration) Categories() []catalog.CategoryID {
	return append([]catalog.CategoryID{}, c.categories...)
}

// IsSelected reports whether the category is selected.
func (c *Configuration) IsSelected(id catalog.CategoryID) bool {
	return slices.Contains(c.categories, id)
}

// SetCategories replaces the selection. Unregistered category ids are ignored.
// Settings entering scope get their catalog default unless a value is already
// stored; catalog settings leaving scope are dropped.
func (c *Configuration) SetCategories(ids []catalog.CategoryID) {
	next := make([]catalog.CategoryID, 0, len(ids))
	for _, id := range ids {
		if catalog.IsCategory(id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	c.categories = next

	for _, s := range c.catalog.Settings() {
		_, stored := c.values[s.ID]
		inScope := s.Intersects(next)
		switch {
		case inScope && !stored:
			c.put(s.ID, s.Default)
		case !inScope && stored:
			c.remove(s.ID)
		}
	}
}

// ToggleCategory selects the category if it is not selected and deselects it
// otherwise.
func (c *Configuration) ToggleCategory(id catalog.CategoryID) {
	next := c.Categories()
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, id)
	}
	c.SetCategories(next)
}

// InScope returns the catalog settings covered by the current selection.
func (c *Configuration) InScope() []catalog.Setting {
	return c.catalog.InCategories(c.categories)
}

// SetValue stores a value for a setting. Unknown ids fail with
// UnknownSettingError and values that do not fit the setting fail with
// InvalidValueError. Writes to a known setting outside the current scope are
// ignored.
func (c *Configuration) SetValue(id string, v catalog.Value) error {
	s, err := c.catalog.Get(id)
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return err
	}
	if !s.Intersects(c.categories) {
		return nil
	}
	c.put(id, v)
	return nil
}

// Reset restores a setting in scope to its catalog default.
func (c *Configuration) Reset(id string) error {
	s, err := c.catalog.Get(id)
	if err != nil {
		return err
	}
	return c.SetValue(id, s.Default)
}

// CurrentValue returns the stored value, falling back to the catalog default.
// Ids that are neither stored nor in the catalog fail with UnknownSettingError.
func (c *Configuration) CurrentValue(id string) (catalog.Value, error) {
	if v, ok := c.values[id]; ok {
		return v, nil
	}
	s, err := c.catalog.Get(id)
	if err != nil {
		return catalog.Value{}, err
	}
	return s.Default, nil
}

// Has reports whether a value is stored for id.
func (c *Configuration) Has(id string) bool {
	_, ok := c.values[id]
	return ok
}

// Len returns the number of stored values.
func (c *Configuration) Len() int {
	return len(c.order)
}

// Keys returns the stored setting ids in insertion order.
func (c *Configuration) Keys() []string {
	return append([]string{}, c.order...)
}

// Values returns the stored entries in insertion order.
func (c *Configuration) Values() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{ID: id, Value: c.values[id]})
	}
	return out
}

// Map returns the stored values keyed by id.
func (c *Configuration) Map() map[string]catalog.Value {
	out := make(map[string]catalog.Value, len(c.values))
	for id, v := range c.values {
		out[id] = v
	}
	return out
}

// Restore replaces the whole state with previously exported data, bypassing
// scope derivation. Unregistered categories are dropped; setting ids are kept
// as given, including ones the catalog does not know.
func (c *Configuration) Restore(categories []catalog.CategoryID, entries []Entry) {
	next := make([]catalog.CategoryID, 0, len(categories))
	for _, id := range categories {
		if catalog.IsCategory(id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	c.categories = next
	c.order = nil
	c.values = make(map[string]catalog.Value, len(entries))
	for _, e := range entries {
		c.put(e.ID, e.Value)
	}
}

// Clone returns an independent copy.
func (c *Configuration) Clone() *Configuration {
	out := New(c.catalog)
	out.Restore(c.categories, c.Values())
	return out
}

func (c *Configuration) put(id string, v catalog.Value) {
	if _, exists := c.values[id]; !exists {
		c.order = append(c.order, id)
	}
	c.values[id] = v
}

func (c *Configuration) remove(id string) {
	delete(c.values, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}
