package prefs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/profile"
)

// ParseError reports a user.js line that could not be parsed.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParsePreferencesText reads user_pref directives from r in file order.
// Comments, blank lines and other pref functions (pref, lockPref) are skipped.
// A later directive for the same id replaces the earlier value in place.
func ParsePreferencesText(r io.Reader) ([]profile.Entry, error) {
	var entries []profile.Entry
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	inComment := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if inComment {
			end := strings.Index(line, "*/")
			if end < 0 {
				continue
			}
			inComment = false
			line = strings.TrimSpace(line[end+2:])
		}
		if strings.HasPrefix(line, "/*") {
			end := strings.Index(line[2:], "*/")
			if end < 0 {
				inComment = true
				continue
			}
			line = strings.TrimSpace(line[2+end+2:])
		}
		if line == "" || strings.HasPrefix(line, "//") || !strings.HasPrefix(line, "user_pref(") {
			continue
		}

		id, value, err := parseDirective(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error()}
		}
		if i, ok := index[id]; ok {
			entries[i].Value = value
			continue
		}
		index[id] = len(entries)
		entries = append(entries, profile.Entry{ID: id, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return entries, nil
}

func parseDirective(line string) (string, catalog.Value, error) {
	rest := strings.TrimPrefix(line, "user_pref(")
	rest = strings.TrimSpace(rest)

	id, rest, err := readString(rest)
	if err != nil {
		return "", catalog.Value{}, fmt.Errorf("invalid preference name: %w", err)
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ",") {
		return "", catalog.Value{}, fmt.Errorf("expected ',' after preference name")
	}
	rest = strings.TrimSpace(rest[1:])

	var value catalog.Value
	if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, `'`) {
		var s string
		s, rest, err = readString(rest)
		if err != nil {
			return "", catalog.Value{}, fmt.Errorf("invalid string value: %w", err)
		}
		value = catalog.String(s)
	} else {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return "", catalog.Value{}, fmt.Errorf("missing ')'")
		}
		token := strings.TrimSpace(rest[:end])
		rest = rest[end:]
		switch token {
		case "true":
			value = catalog.Bool(true)
		case "false":
			value = catalog.Bool(false)
		default:
			n, perr := strconv.ParseFloat(token, 64)
			if perr != nil {
				return "", catalog.Value{}, fmt.Errorf("invalid value %q", token)
			}
			if value, perr = catalog.FiniteNumber(n); perr != nil {
				return "", catalog.Value{}, fmt.Errorf("invalid value %q: %w", token, perr)
			}
		}
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ")") {
		return "", catalog.Value{}, fmt.Errorf("missing ')'")
	}
	return id, value, nil
}

// readString consumes a quoted string with backslash escapes from the start
// of s and returns the unescaped content and the remainder.
func readString(s string) (string, string, error) {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", s, fmt.Errorf("expected quoted string")
	}
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 >= len(s) {
				return "", s, fmt.Errorf("unterminated escape")
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		case c == quote:
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", s, fmt.Errorf("unterminated string")
}
