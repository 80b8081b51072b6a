// Package prefs converts configurations to and from the user.js preferences
// format and the versioned export document.
package prefs

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/profile"
)

// HeaderTitle is the first line of every generated user.js.
const HeaderTitle = "// user.js Generator - Generated Settings"

// TextOptions controls user.js generation.
type TextOptions struct {
	// Catalog supplies titles and ranges for comment blocks. Optional.
	Catalog *catalog.Catalog
	// Comments emits a /* ... */ block above each setting.
	Comments bool
	// Header emits the generator banner and timestamp.
	Header bool
	// Now overrides the clock used for the header timestamp.
	Now func() time.Time
}

// ToPreferencesText renders the configuration as user.js text.
// Lines follow the configuration's insertion order; no other ordering is
// guaranteed.
func ToPreferencesText(cfg *profile.Configuration, opts TextOptions) (string, error) {
	if opts.Catalog == nil {
		opts.Catalog = cfg.Catalog()
	}
	var b strings.Builder
	if err := WriteEntries(&b, cfg.Values(), opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteEntries writes user.js text for the entries to w. Nothing is written
// when any value has no literal (empty values, NaN, infinities).
func WriteEntries(w io.Writer, entries []profile.Entry, opts TextOptions) error {
	for _, e := range entries {
		if err := e.Value.Check(); err != nil {
			return fmt.Errorf("setting %s: %w", e.ID, err)
		}
	}

	bw := bufio.NewWriter(w)

	if opts.Header {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		fmt.Fprintln(bw, HeaderTitle)
		fmt.Fprintf(bw, "// Generated on: %s\n", now().UTC().Format(TimestampLayout))
		fmt.Fprintln(bw)
	}

	for _, e := range entries {
		if opts.Comments && opts.Catalog != nil {
			if s, ok := opts.Catalog.Lookup(e.ID); ok {
				writeComment(bw, s)
			}
		}
		fmt.Fprintln(bw, Line(e.ID, e.Value))
	}

	return bw.Flush()
}

// Line renders one user_pref directive.
func Line(id string, v catalog.Value) string {
	return fmt.Sprintf("user_pref(%s, %s);", catalog.QuoteString(id), v.Literal())
}

func writeComment(w io.Writer, s catalog.Setting) {
	fmt.Fprintln(w, "/*")
	fmt.Fprintf(w, " * %s\n", commentSafe(s.Title))
	if s.Description != "" {
		fmt.Fprintf(w, " * %s\n", commentSafe(s.Description))
	}
	if s.HelpText != "" {
		fmt.Fprintf(w, " * Note: %s\n", commentSafe(s.HelpText))
	}
	if r := s.RangeText(); r != "" {
		fmt.Fprintf(w, " * Range: %s\n", commentSafe(r))
	}
	fmt.Fprintln(w, " */")
}

// commentSafe keeps catalog text from closing the comment block early.
func commentSafe(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}
