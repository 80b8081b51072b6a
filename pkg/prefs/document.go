package prefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/profile"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is written into every exported document.
const SchemaVersion = "1.0.0"

// TimestampLayout is the ISO-8601 layout used for document and header timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultExportFilename is the suggested name for exported documents.
const DefaultExportFilename = "firefox-config.json"

// MalformedDocumentError is returned when an export document does not have the
// expected shape.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed configuration document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed configuration document: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Document is a versioned snapshot of a configuration.
type Document struct {
	Categories []catalog.CategoryID
	Settings   []profile.Entry
	Timestamp  string
	Version    string
}

// ToExportDocument snapshots the configuration at the given time.
func ToExportDocument(cfg *profile.Configuration, now time.Time) *Document {
	return &Document{
		Categories: cfg.Categories(),
		Settings:   cfg.Values(),
		Timestamp:  now.UTC().Format(TimestampLayout),
		Version:    SchemaVersion,
	}
}

// FromExportDocument rebuilds a configuration from a document. Setting ids and
// value types are not checked against the catalog; unknown ids are carried
// through unchanged.
func FromExportDocument(doc *Document, c *catalog.Catalog) (*profile.Configuration, error) {
	if doc == nil {
		return nil, &MalformedDocumentError{Reason: "document is empty"}
	}
	for _, e := range doc.Settings {
		if e.ID == "" {
			return nil, &MalformedDocumentError{Reason: "setting with empty id"}
		}
		if !e.Value.IsValid() {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("setting %s has no value", e.ID)}
		}
	}
	cfg := profile.New(c)
	cfg.Restore(doc.Categories, doc.Settings)
	return cfg, nil
}

// Import decodes a JSON document and rebuilds the configuration.
func Import(data []byte, c *catalog.Catalog) (*profile.Configuration, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return FromExportDocument(doc, c)
}

// MarshalJSON writes the document with settings in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"categories":`)
	cats := d.Categories
	if cats == nil {
		cats = []catalog.CategoryID{}
	}
	if err := writeJSON(&buf, cats); err != nil {
		return nil, err
	}

	buf.WriteString(`,"settings":{`)
	for i, e := range d.Settings {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, e.ID); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, e.Value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", e.ID, err)
		}
	}
	buf.WriteString(`},"timestamp":`)
	if err := writeJSON(&buf, d.Timestamp); err != nil {
		return nil, err
	}
	buf.WriteString(`,"version":`)
	if err := writeJSON(&buf, d.Version); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// EncodeDocument renders the document as indented JSON.
func EncodeDocument(doc *Document) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes a document, keeping the settings order.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// DecodeDocument parses a JSON export document. The top level must be an
// object carrying a "categories" array of strings and a "settings" object of
// boolean, number or string values.
func DecodeDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, &MalformedDocumentError{Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &MalformedDocumentError{Reason: "top level is not an object"}
	}

	cats := root.Get("categories")
	if !cats.Exists() {
		return nil, &MalformedDocumentError{Reason: `missing "categories"`}
	}
	if !cats.IsArray() {
		return nil, &MalformedDocumentError{Reason: `"categories" is not an array`}
	}
	settings := root.Get("settings")
	if !settings.Exists() {
		return nil, &MalformedDocumentError{Reason: `missing "settings"`}
	}
	if !settings.IsObject() {
		return nil, &MalformedDocumentError{Reason: `"settings" is not an object`}
	}

	doc := &Document{
		Categories: []catalog.CategoryID{},
		Timestamp:  root.Get("timestamp").String(),
		Version:    root.Get("version").String(),
	}

	var derr error
	cats.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			derr = &MalformedDocumentError{Reason: fmt.Sprintf("category %s is not a string", v.Raw)}
			return false
		}
		doc.Categories = append(doc.Categories, catalog.CategoryID(v.Str))
		return true
	})
	if derr != nil {
		return nil, derr
	}

	index := make(map[string]int)
	settings.ForEach(func(k, v gjson.Result) bool {
		value, err := gjsonValue(v)
		if err != nil {
			derr = &MalformedDocumentError{Reason: fmt.Sprintf("setting %s", k.Str), Err: err}
			return false
		}
		if i, ok := index[k.Str]; ok {
			doc.Settings[i].Value = value
			return true
		}
		index[k.Str] = len(doc.Settings)
		doc.Settings = append(doc.Settings, profile.Entry{ID: k.Str, Value: value})
		return true
	})
	if derr != nil {
		return nil, derr
	}
	return doc, nil
}

func gjsonValue(v gjson.Result) (catalog.Value, error) {
	switch v.Type {
	case gjson.True:
		return catalog.Bool(true), nil
	case gjson.False:
		return catalog.Bool(false), nil
	case gjson.Number:
		return catalog.FiniteNumber(v.Num)
	case gjson.String:
		return catalog.String(v.Str), nil
	case gjson.Null:
		return catalog.Value{}, fmt.Errorf("null is not a boolean, number or string")
	default:
		return catalog.Value{}, fmt.Errorf("value %s is not a boolean, number or string", v.Raw)
	}
}

// EncodeDocumentYAML renders the document as YAML with settings in insertion order.
func EncodeDocumentYAML(doc *Document) ([]byte, error) {
	settings := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range doc.Settings {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.ID}
		var val yaml.Node
		if err := val.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", e.ID, err)
		}
		settings.Content = append(settings.Content, key, &val)
	}

	var cats yaml.Node
	categories := doc.Categories
	if categories == nil {
		categories = []catalog.CategoryID{}
	}
	if err := cats.Encode(categories); err != nil {
		return nil, err
	}

	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "categories"}, &cats,
			{Kind: yaml.ScalarNode, Value: "settings"}, settings,
			{Kind: yaml.ScalarNode, Value: "timestamp"}, {Kind: yaml.ScalarNode, Value: doc.Timestamp, Style: yaml.DoubleQuotedStyle},
			{Kind: yaml.ScalarNode, Value: "version"}, {Kind: yaml.ScalarNode, Value: doc.Version, Style: yaml.DoubleQuotedStyle},
		},
	}
	return yaml.Marshal(root)
}

// DecodeDocumentYAML parses a YAML export document with the same shape rules
// as DecodeDocument.
func DecodeDocumentYAML(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid YAML", Err: err}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, &MalformedDocumentError{Reason: "top level is not a mapping"}
	}
	root := node.Content[0]

	doc := &Document{}
	var haveCats, haveSettings bool
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "categories":
			haveCats = true
			if val.Kind != yaml.SequenceNode {
				return nil, &MalformedDocumentError{Reason: `"categories" is not a list`}
			}
			doc.Categories = []catalog.CategoryID{}
			for _, c := range val.Content {
				if c.Kind != yaml.ScalarNode {
					return nil, &MalformedDocumentError{Reason: fmt.Sprintf("line %d: category is not a string", c.Line)}
				}
				doc.Categories = append(doc.Categories, catalog.CategoryID(c.Value))
			}
		case "settings":
			haveSettings = true
			if val.Kind != yaml.MappingNode {
				return nil, &MalformedDocumentError{Reason: `"settings" is not a mapping`}
			}
			index := make(map[string]int)
			for j := 0; j+1 < len(val.Content); j += 2 {
				id := val.Content[j].Value
				var v catalog.Value
				if err := val.Content[j+1].Decode(&v); err != nil {
					return nil, &MalformedDocumentError{Reason: fmt.Sprintf("setting %s", id), Err: err}
				}
				if k, ok := index[id]; ok {
					doc.Settings[k].Value = v
					continue
				}
				index[id] = len(doc.Settings)
				doc.Settings = append(doc.Settings, profile.Entry{ID: id, Value: v})
			}
		case "timestamp":
			doc.Timestamp = val.Value
		case "version":
			doc.Version = val.Value
		}
	}
	if !haveCats {
		return nil, &MalformedDocumentError{Reason: `missing "categories"`}
	}
	if !haveSettings {
		return nil, &MalformedDocumentError{Reason: `missing "settings"`}
	}
	return doc, nil
}
