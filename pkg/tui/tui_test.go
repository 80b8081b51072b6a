package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/profile"
	"github.com/entrhq/foxconf/pkg/storage"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		catalog.Setting{
			ID:         "network.timeout",
			Categories: []catalog.CategoryID{catalog.CategoryPerformance},
			Title:      "Network Timeout",
			Type:       catalog.TypeNumber,
			Default:    catalog.Number(600),
			Min:        catalog.Float(0),
			Max:        catalog.Float(1000),
			Step:       catalog.Float(100),
			Unit:       "ms",
		},
		catalog.Setting{
			ID:          "privacy.doNotTrack",
			Categories:  []catalog.CategoryID{catalog.CategoryPrivacy},
			Title:       "Do Not Track",
			Description: "Send the DNT header",
			HelpText:    "Sites may ignore it.",
			Type:        catalog.TypeBoolean,
			Default:     catalog.Bool(true),
		},
		catalog.Setting{
			ID:         "privacy.homepage",
			Categories: []catalog.CategoryID{catalog.CategoryPrivacy},
			Title:      "Homepage",
			Type:       catalog.TypeString,
			Default:    catalog.String("about:home"),
		},
	)
	require.NoError(t, err)
	return c
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

func key(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys to the model and returns the last command.
func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

type fixture struct {
	model *Model
	fs    afero.Fs
	out   *download.DirWriter
	store *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := testCatalog(t)
	fs := afero.NewMemMapFs()
	out := download.NewDirWriter(fs, "/out")
	store := storage.NewMemoryStore()
	g := gateway.New(store, out, c, nil, gateway.Options{Now: fixedNow})

	m := New(Options{
		Config:    profile.New(c),
		Transport: gateway.NewLocalTransport(g),
		Export:    out,
		Now:       fixedNow,
	})
	return &fixture{model: m, fs: fs, out: out, store: store}
}

// selectCategory toggles the category at index i in the registry order.
func selectCategory(m *Model, id catalog.CategoryID) {
	for i, c := range m.categories {
		if c.ID == id {
			m.focus = paneCategories
			m.categoryCursor = i
			press(m, "space")
			return
		}
	}
}

func TestNewModel(t *testing.T) {
	f := newFixture(t)
	m := f.model

	assert.Equal(t, paneCategories, m.focus)
	assert.False(t, m.Applying())
	assert.False(t, m.editing)
	assert.Len(t, m.categories, len(catalog.Categories()))
	assert.Nil(t, m.Init())
}

func TestToggleCategoryPopulatesDefaults(t *testing.T) {
	m := newFixture(t).model

	selectCategory(m, catalog.CategoryPerformance)
	assert.True(t, m.Config().IsSelected(catalog.CategoryPerformance))
	v, err := m.Config().CurrentValue("network.timeout")
	require.NoError(t, err)
	assert.True(t, catalog.Number(600).Equal(v))
	assert.Equal(t, []string{"network.timeout"}, m.Config().Keys())

	selectCategory(m, catalog.CategoryPerformance)
	assert.Empty(t, m.Config().Keys())
}

func TestTabNeedsSettings(t *testing.T) {
	m := newFixture(t).model

	press(m, "tab")
	assert.Equal(t, paneCategories, m.focus, "nothing to focus without a selection")

	selectCategory(m, catalog.CategoryPrivacy)
	press(m, "tab")
	assert.Equal(t, paneSettings, m.focus)
	press(m, "tab")
	assert.Equal(t, paneCategories, m.focus)
}

func TestNumericAdjustStaysInBounds(t *testing.T) {
	m := newFixture(t).model
	selectCategory(m, catalog.CategoryPerformance)
	press(m, "tab")

	press(m, "right")
	v, _ := m.Config().CurrentValue("network.timeout")
	assert.True(t, catalog.Number(700).Equal(v))

	press(m, "+", "+", "+", "+", "+")
	v, _ = m.Config().CurrentValue("network.timeout")
	assert.True(t, catalog.Number(1000).Equal(v), "clamped to max, got %s", v)

	press(m, "r")
	v, _ = m.Config().CurrentValue("network.timeout")
	assert.True(t, catalog.Number(600).Equal(v))
}

func TestBooleanToggleAndHelp(t *testing.T) {
	m := newFixture(t).model
	selectCategory(m, catalog.CategoryPrivacy)
	press(m, "tab")

	press(m, "space")
	v, _ := m.Config().CurrentValue("privacy.doNotTrack")
	assert.True(t, catalog.Bool(false).Equal(v))
	assert.Contains(t, m.View(), "*", "modified marker")

	assert.NotContains(t, m.View(), "Sites may ignore it.")
	press(m, "?")
	assert.Contains(t, m.View(), "Sites may ignore it.")
}

func TestEditString(t *testing.T) {
	m := newFixture(t).model
	selectCategory(m, catalog.CategoryPrivacy)
	press(m, "tab", "down")

	press(m, "enter")
	require.True(t, m.editing)
	assert.Equal(t, "about:home", m.input.Value())

	m.input.SetValue(`https://example.org/"start"`)
	press(m, "enter")
	assert.False(t, m.editing)
	v, _ := m.Config().CurrentValue("privacy.homepage")
	assert.True(t, catalog.String(`https://example.org/"start"`).Equal(v))

	press(m, "enter")
	m.input.SetValue("discarded")
	press(m, "esc")
	assert.False(t, m.editing)
	v, _ = m.Config().CurrentValue("privacy.homepage")
	assert.True(t, catalog.String(`https://example.org/"start"`).Equal(v))
}

func TestEditNumberRejectsInvalidInput(t *testing.T) {
	m := newFixture(t).model
	selectCategory(m, catalog.CategoryPerformance)
	press(m, "tab", "enter")
	require.True(t, m.editing)

	m.input.SetValue("fast")
	press(m, "enter")
	assert.True(t, m.editing, "editor stays open on bad input")
	assert.Contains(t, m.Err(), "not a number")

	m.input.SetValue("5000")
	press(m, "enter")
	assert.True(t, m.editing)
	assert.Contains(t, m.Err(), "network.timeout")

	m.input.SetValue("NaN")
	press(m, "enter")
	assert.True(t, m.editing)
	assert.Contains(t, m.Err(), "not a finite number")

	m.input.SetValue("250")
	press(m, "enter")
	assert.False(t, m.editing)
	assert.Empty(t, m.Err())
	v, _ := m.Config().CurrentValue("network.timeout")
	assert.True(t, catalog.Number(250).Equal(v))
}

func TestApplyFlow(t *testing.T) {
	f := newFixture(t)
	m := f.model
	selectCategory(m, catalog.CategoryPerformance)
	selectCategory(m, catalog.CategoryPrivacy)

	cmd := press(m, "a")
	require.NotNil(t, cmd)
	assert.True(t, m.Applying())
	assert.Contains(t, m.View(), "Applying settings")
	assert.NotContains(t, m.buildHelpText(), "a: Apply")

	assert.Nil(t, press(m, "a"), "apply is disabled while in flight")

	req, err := gateway.NewApplyRequestEntries(m.Config().Values())
	require.NoError(t, err)
	m.Update(applyCmd(m.opts.Transport, req, time.Second)())

	assert.False(t, m.Applying())
	assert.Empty(t, m.Err())
	assert.Equal(t, "Applied 3 settings to /out/user.js", m.Status())

	data, err := afero.ReadFile(f.fs, "/out/user.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), `user_pref("network.timeout", 600);`)
	assert.Contains(t, string(data), `user_pref("privacy.homepage", "about:home");`)

	stored, err := f.store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, stored["privacy.doNotTrack"])
}

type failingTransport struct{}

func (failingTransport) Send(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	return gateway.Response{}, errors.New("host disconnected")
}

func TestApplyErrorShownNextToAction(t *testing.T) {
	m := newFixture(t).model
	m.opts.Transport = failingTransport{}

	cmd := press(m, "a")
	require.NotNil(t, cmd)
	m.Update(applyCmd(failingTransport{}, gateway.Request{Type: gateway.KindApplySettings}, time.Second)())

	assert.False(t, m.Applying())
	assert.Equal(t, "apply: host disconnected", m.Err())
	assert.Contains(t, m.View(), "apply: host disconnected")

	m.Update(applyResultMsg{resp: gateway.Response{Success: false, Error: "invalid settings format: settings are required"}})
	assert.Equal(t, "apply: invalid settings format: settings are required", m.Err())
}

func TestApplyWithoutTransport(t *testing.T) {
	m := New(Options{Config: profile.New(testCatalog(t))})
	assert.Nil(t, press(m, "a"))
	assert.False(t, m.Applying())
	assert.Contains(t, m.Err(), "no gateway configured")
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	m := f.model
	selectCategory(m, catalog.CategoryPerformance)

	cmd := press(m, "e")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Empty(t, m.Err())
	assert.True(t, strings.HasPrefix(m.Status(), "Exported /out/firefox-config.json"), m.Status())

	data, err := afero.ReadFile(f.fs, "/out/firefox-config.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"categories": ["performance"],
		"settings": {"network.timeout": 600},
		"timestamp": "2024-03-01T12:30:00.000Z",
		"version": "1.0.0"
	}`, string(data))
}

func TestPreview(t *testing.T) {
	m := newFixture(t).model
	selectCategory(m, catalog.CategoryPerformance)

	text, err := m.previewText()
	require.NoError(t, err)
	assert.Contains(t, text, `user_pref("network.timeout", 600);`)

	press(m, "p")
	assert.True(t, m.showPreview)
	assert.Contains(t, m.View(), "user.js preview")

	// Editing keys are ignored while the preview is open
	press(m, "a")
	assert.False(t, m.Applying())

	press(m, "esc")
	assert.False(t, m.showPreview)
}

func TestWindowResize(t *testing.T) {
	m := newFixture(t).model
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 116, m.preview.Width)
	assert.Equal(t, 32, m.preview.Height)
}

func TestQuit(t *testing.T) {
	m := newFixture(t).model
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHighlight(t *testing.T) {
	out := Highlight(`user_pref("a.b", true);`)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "user_pref")
}
