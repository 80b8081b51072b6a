package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		Setting{
			ID:         "network.timeout",
			Categories: []CategoryID{CategoryPerformance},
			Title:      "Network Timeout",
			Type:       TypeNumber,
			Default:    Number(600),
			Min:        Float(0),
			Max:        Float(1000),
			Step:       Float(100),
			Unit:       "ms",
		},
		Setting{
			ID:         "privacy.doNotTrack",
			Categories: []CategoryID{CategoryPrivacy},
			Title:      "Do Not Track",
			Type:       TypeBoolean,
			Default:    Bool(true),
		},
		Setting{
			ID:         "security.homepage",
			Categories: []CategoryID{CategorySecurity, CategoryPrivacy},
			Title:      "Homepage",
			Type:       TypeString,
			Default:    String("about:blank"),
		},
	)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("keeps order", func(t *testing.T) {
		c := testCatalog(t)
		require.Equal(t, 3, c.Len())
		ids := []string{}
		for _, s := range c.Settings() {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, []string{"network.timeout", "privacy.doNotTrack", "security.homepage"}, ids)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		s := Setting{ID: "a", Categories: []CategoryID{CategoryPrivacy}, Type: TypeBoolean, Default: Bool(true)}
		_, err := New(s, s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := New(Setting{ID: "a", Categories: []CategoryID{"misc"}, Type: TypeBoolean, Default: Bool(true)})
		require.Error(t, err)
	})

	t.Run("rejects default of wrong type", func(t *testing.T) {
		_, err := New(Setting{ID: "a", Categories: []CategoryID{CategoryPrivacy}, Type: TypeBoolean, Default: String("yes")})
		require.Error(t, err)
	})

	t.Run("rejects default out of range", func(t *testing.T) {
		_, err := New(Setting{
			ID: "a", Categories: []CategoryID{CategoryPerformance}, Type: TypeNumber,
			Default: Number(5000), Min: Float(0), Max: Float(1000),
		})
		require.Error(t, err)
	})
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Greater(t, c.Len(), 20)

	for _, cat := range Categories() {
		assert.NotEmpty(t, c.InCategories([]CategoryID{cat.ID}), "category %s has no settings", cat.ID)
	}
}

func TestLookup(t *testing.T) {
	c := testCatalog(t)

	s, ok := c.Lookup("network.timeout")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, s.Type)

	_, err := c.Get("nope")
	var unknown *UnknownSettingError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.ID)
}

func TestInCategories(t *testing.T) {
	c := testCatalog(t)

	privacy := c.InCategories([]CategoryID{CategoryPrivacy})
	require.Len(t, privacy, 2)
	assert.Equal(t, "privacy.doNotTrack", privacy[0].ID)
	assert.Equal(t, "security.homepage", privacy[1].ID)

	assert.Empty(t, c.InCategories(nil))
	assert.Len(t, c.InCategories([]CategoryID{CategoryPrivacy, CategorySecurity, CategoryPerformance}), 3)
}

func TestMatch(t *testing.T) {
	c := Default()

	tests := []struct {
		pattern string
		want    string
		wantErr bool
	}{
		{pattern: "privacy.*", want: "privacy.resistFingerprinting"},
		{pattern: "network.http.*", want: "network.http.connection-timeout"},
		{pattern: "**.enabled", want: "toolkit.telemetry.enabled"},
		{pattern: "geo.enabled", want: "geo.enabled"},
		{pattern: "[", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := c.Match(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Contains(t, ids, tt.want)
		})
	}

	t.Run("single star stays within a segment", func(t *testing.T) {
		got, err := c.Match("privacy.*")
		require.NoError(t, err)
		for _, s := range got {
			assert.NotEqual(t, "privacy.trackingprotection.enabled", s.ID)
		}
	})
}

func TestSettingValidate(t *testing.T) {
	c := testCatalog(t)
	timeout, _ := c.Lookup("network.timeout")
	dnt, _ := c.Lookup("privacy.doNotTrack")
	cookies, _ := Default().Lookup("network.cookie.cookieBehavior")

	tests := []struct {
		name    string
		setting Setting
		value   Value
		wantErr bool
	}{
		{"number in range", timeout, Number(250), false},
		{"number at max", timeout, Number(1000), false},
		{"number below min", timeout, Number(-1), true},
		{"number above max", timeout, Number(1001), true},
		{"wrong type", timeout, Bool(true), true},
		{"boolean", dnt, Bool(false), false},
		{"empty", dnt, Value{}, true},
		{"option allowed", cookies, Number(1), false},
		{"option not allowed", cookies, Number(7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setting.Validate(tt.value)
			if tt.wantErr {
				var invalid *InvalidValueError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRangeText(t *testing.T) {
	c := testCatalog(t)
	timeout, _ := c.Lookup("network.timeout")
	assert.Equal(t, "0 - 1000 ms (step 100)", timeout.RangeText())

	dnt, _ := c.Lookup("privacy.doNotTrack")
	assert.Empty(t, dnt.RangeText())

	tls, _ := Default().Lookup("security.tls.version.min")
	assert.Contains(t, tls.RangeText(), "3 = TLS 1.2")
}

func TestValidateValues(t *testing.T) {
	c := testCatalog(t)

	assert.NoError(t, c.ValidateValues(map[string]Value{
		"network.timeout":    Number(100),
		"privacy.doNotTrack": Bool(false),
	}))

	err := c.ValidateValues(map[string]Value{
		"network.timeout":    Number(5000),
		"privacy.doNotTrack": String("yes"),
		"made.up":            Bool(true),
	})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)

	var unknown *UnknownSettingError
	assert.ErrorAs(t, err, &unknown)
}

func TestValueLiteral(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"integer", Number(250), "250"},
		{"negative", Number(-1), "-1"},
		{"decimal", Number(1.5), "1.5"},
		{"large", Number(1048576), "1048576"},
		{"plain string", String("about:blank"), `"about:blank"`},
		{"quote", String(`say "hi"`), `"say \"hi\""`},
		{"backslash", String(`C:\Temp`), `"C:\\Temp"`},
		{"newline", String("a\nb\r"), `"a\nb\r"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Literal())
		})
	}
}

func TestQuoteStringRoundTrip(t *testing.T) {
	inputs := []string{``, `plain`, `"`, `\`, `a\"b`, `\\"\\`, `end\`, `mixed "quotes" and \slashes\`, "two\nlines", "crlf\r\n"}

	for _, in := range inputs {
		quoted := QuoteString(in)
		assert.NotContains(t, quoted, "\n")
		assert.NotContains(t, quoted, "\r")
		got, err := strconv.Unquote(quoted)
		require.NoError(t, err, "literal %s", quoted)
		assert.Equal(t, in, got)
	}
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(true)
	require.NoError(t, err)
	assert.Equal(t, TypeBoolean, v.Type())

	v, err = ValueOf(12)
	require.NoError(t, err)
	n, ok := v.AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	v, err = ValueOf(json.Number("3.25"))
	require.NoError(t, err)
	assert.True(t, v.Equal(Number(3.25)))

	_, err = ValueOf(nil)
	assert.Error(t, err)
	_, err = ValueOf(map[string]any{})
	assert.Error(t, err)
	_, err = ValueOf([]any{1})
	assert.Error(t, err)
}

func TestNonFiniteNumbers(t *testing.T) {
	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ValueOf(n)
		assert.ErrorIs(t, err, ErrNonFinite)

		_, err = FiniteNumber(n)
		assert.ErrorIs(t, err, ErrNonFinite)

		v := Number(n)
		assert.ErrorIs(t, v.Check(), ErrNonFinite)
		assert.NotEqual(t, "0", v.Literal())

		s := Setting{ID: "unbounded", Type: TypeNumber, Default: Number(1)}
		var invalid *InvalidValueError
		require.ErrorAs(t, s.Validate(v), &invalid)
		assert.Contains(t, invalid.Reason, "not a finite number")
	}

	_, err := ValueOf(json.Number("1e400"))
	assert.Error(t, err)

	assert.NoError(t, Number(1.5).Check())
	assert.Error(t, Value{}.Check())
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"n": Number(600)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 600}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"x\"y"`), &v))
	assert.True(t, v.Equal(String(`x"y`)))

	assert.Error(t, json.Unmarshal([]byte(`null`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))

	_, err = json.Marshal(Value{})
	assert.Error(t, err)
}

func TestValueYAML(t *testing.T) {
	var out struct {
		A Value `yaml:"a"`
		B Value `yaml:"b"`
		C Value `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: true\nb: 250\nc: hello\n"), &out))
	assert.True(t, out.A.Equal(Bool(true)))
	assert.True(t, out.B.Equal(Number(250)))
	assert.True(t, out.C.Equal(String("hello")))

	err := yaml.Unmarshal([]byte("a: [1, 2]\n"), &out)
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, CategoryPrivacy, cats[0].ID)
	assert.True(t, IsCategory(CategorySecurity))
	assert.False(t, IsCategory("misc"))

	cats[0].Title = "changed"
	again, _ := LookupCategory(CategoryPrivacy)
	assert.Equal(t, "Privacy", again.Title)
}

func TestNudge(t *testing.T) {
	ranged := Setting{ID: "t", Type: TypeNumber, Default: Number(600), Min: Float(0), Max: Float(1000), Step: Float(100)}
	selectSetting := Setting{ID: "s", Type: TypeNumber, Default: Number(2), Options: []Option{
		{Value: 0, Label: "Off"},
		{Value: 2, Label: "First"},
		{Value: 3, Label: "Only"},
	}}
	open := Setting{ID: "o", Type: TypeNumber, Default: Number(5)}

	tests := []struct {
		name    string
		setting Setting
		value   Value
		delta   int
		want    Value
	}{
		{name: "step up", setting: ranged, value: Number(600), delta: 1, want: Number(700)},
		{name: "step down", setting: ranged, value: Number(600), delta: -2, want: Number(400)},
		{name: "clamp max", setting: ranged, value: Number(950), delta: 1, want: Number(1000)},
		{name: "clamp min", setting: ranged, value: Number(50), delta: -1, want: Number(0)},
		{name: "option next", setting: selectSetting, value: Number(2), delta: 1, want: Number(3)},
		{name: "option wraps forward", setting: selectSetting, value: Number(3), delta: 1, want: Number(0)},
		{name: "option wraps back", setting: selectSetting, value: Number(0), delta: -1, want: Number(3)},
		{name: "unbounded", setting: open, value: Number(5), delta: -1, want: Number(4)},
		{name: "non-number unchanged", setting: ranged, value: Bool(true), delta: 1, want: Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.setting.Nudge(tt.value, tt.delta)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestLabel(t *testing.T) {
	s := Setting{ID: "s", Type: TypeNumber, Options: []Option{{Value: 5, Label: "Block cross-site"}}}
	assert.Equal(t, "Block cross-site", s.Label(Number(5)))
	assert.Equal(t, "7", s.Label(Number(7)))

	ms := Setting{ID: "m", Type: TypeNumber, Unit: "ms"}
	assert.Equal(t, "250 ms", ms.Label(Number(250)))
	assert.Equal(t, "hello", Setting{Type: TypeString}.Label(String("hello")))
}

func TestParseValue(t *testing.T) {
	c := testCatalog(t)
	timeout, _ := c.Lookup("network.timeout")
	dnt, _ := c.Lookup("privacy.doNotTrack")
	home, _ := c.Lookup("security.homepage")
	selectSetting := Setting{ID: "s", Type: TypeNumber, Options: []Option{{Value: 3, Label: "Only DoH"}}}
	unbounded := Setting{ID: "u", Type: TypeNumber, Default: Number(1)}

	tests := []struct {
		name    string
		setting Setting
		text    string
		want    Value
		wantErr string
	}{
		{name: "number", setting: timeout, text: " 250 ", want: Number(250)},
		{name: "number out of range", setting: timeout, text: "5000", wantErr: "network.timeout"},
		{name: "not a number", setting: timeout, text: "fast", wantErr: "not a number"},
		{name: "NaN in range check", setting: timeout, text: "NaN", wantErr: "not a finite number"},
		{name: "infinity", setting: unbounded, text: "Inf", wantErr: "not a finite number"},
		{name: "negative infinity", setting: unbounded, text: "-Infinity", wantErr: "not a finite number"},
		{name: "unbounded number", setting: unbounded, text: "1e6", want: Number(1e6)},
		{name: "bool", setting: dnt, text: "false", want: Bool(false)},
		{name: "bad bool", setting: dnt, text: "maybe", wantErr: "not true or false"},
		{name: "string kept verbatim", setting: home, text: " about:blank", want: String(" about:blank")},
		{name: "option label", setting: selectSetting, text: "only doh", want: Number(3)},
		{name: "option value", setting: selectSetting, text: "3", want: Number(3)},
		{name: "not an option", setting: selectSetting, text: "4", wantErr: "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.setting.ParseValue(tt.text)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}
