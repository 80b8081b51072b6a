package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/prefs"
	"github.com/entrhq/foxconf/pkg/profile"
)

// sourceFlags select the configuration a command works on: an imported file,
// extra categories and individual overrides, applied in that order.
type sourceFlags struct {
	from       string
	categories []string
	sets       []string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.from, "from", "f", "", "Start from an exported document (.json, .yaml) or a user.js")
	cmd.Flags().StringSliceVarP(&s.categories, "category", "c", nil, "Select a category (privacy, security, performance); repeatable")
	cmd.Flags().StringArrayVar(&s.sets, "set", nil, "Override a setting as id=value; repeatable")
}

func (s *sourceFlags) empty() bool {
	return s.from == "" && len(s.categories) == 0 && len(s.sets) == 0
}

// build assembles the configuration described by the flags.
func (s *sourceFlags) build(a *app) (*profile.Configuration, error) {
	cfg := profile.New(a.catalog)
	if s.from != "" {
		loaded, err := loadConfiguration(a.fs, s.from, a.catalog)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(s.categories) > 0 {
		selected := cfg.Categories()
		for _, name := range s.categories {
			id := catalog.CategoryID(strings.ToLower(strings.TrimSpace(name)))
			if !catalog.IsCategory(id) {
				return nil, fmt.Errorf("unknown category %q", name)
			}
			selected = append(selected, id)
		}
		cfg.SetCategories(selected)
	}

	for _, assignment := range s.sets {
		id, text, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected id=value", assignment)
		}
		setting, err := a.catalog.Get(strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		v, err := setting.ParseValue(text)
		if err != nil {
			return nil, err
		}
		if !setting.Intersects(cfg.Categories()) {
			// Overriding a setting selects its first category
			cfg.SetCategories(append(cfg.Categories(), setting.Categories[0]))
		}
		if err := cfg.SetValue(setting.ID, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadConfiguration reads an export document or a user.js from path.
func loadConfiguration(fs afero.Fs, path string, c *catalog.Catalog) (*profile.Configuration, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err := prefs.DecodeDocumentYAML(data)
		if err != nil {
			return nil, err
		}
		return prefs.FromExportDocument(doc, c)
	case ".js":
		return configurationFromUserJS(data, c)
	default:
		return prefs.Import(data, c)
	}
}

// configurationFromUserJS selects every category any known preference in the
// file belongs to, then restores the parsed values.
func configurationFromUserJS(data []byte, c *catalog.Catalog) (*profile.Configuration, error) {
	entries, err := prefs.ParsePreferencesText(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var categories []catalog.CategoryID
	seen := map[catalog.CategoryID]bool{}
	for _, e := range entries {
		s, ok := c.Lookup(e.ID)
		if !ok {
			continue
		}
		for _, id := range s.Categories {
			if !seen[id] {
				seen[id] = true
				categories = append(categories, id)
			}
		}
	}

	cfg := profile.New(c)
	cfg.Restore(categories, entries)
	return cfg, nil
}

// unknownIDs lists stored ids the catalog does not know.
func unknownIDs(cfg *profile.Configuration) []string {
	var ids []string
	for _, id := range cfg.Keys() {
		if _, ok := cfg.Catalog().Lookup(id); !ok {
			ids = append(ids, id)
		}
	}
	return ids
}
