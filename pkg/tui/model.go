// Package tui is the interactive terminal form for building a Firefox
// configuration: pick categories, edit the settings they bring into scope,
// preview the generated user.js, export it, and apply it through a gateway.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/logging"
	"github.com/entrhq/foxconf/pkg/prefs"
	"github.com/entrhq/foxconf/pkg/profile"
)

// pane identifies which list has keyboard focus.
type pane int

const (
	paneCategories pane = iota
	paneSettings
)

// Options configure a Model.
type Options struct {
	// Config is edited in place. Required.
	Config *profile.Configuration
	// Transport carries APPLY_SETTINGS. Apply is disabled when nil.
	Transport gateway.Transport
	// Export receives the exported JSON document. Export is disabled when nil.
	Export download.Adapter
	// Comments adds documentation blocks to the preview.
	Comments bool
	// ApplyTimeout bounds one apply round trip. Zero means 30s.
	ApplyTimeout time.Duration
	Logger       *logging.Logger
	// Now overrides the clock for export timestamps and the preview header.
	Now func() time.Time
}

// Model is the bubbletea model of the settings form.
type Model struct {
	// Bubble Tea components
	spinner spinner.Model
	input   textinput.Model
	preview viewport.Model

	cfg  *profile.Configuration
	opts Options
	log  *logging.Logger

	categories []catalog.Category

	// Navigation state
	focus          pane
	categoryCursor int
	settingCursor  int

	// Edit state
	editing     bool
	editID      string
	showHelp    map[string]bool
	showPreview bool

	// Action state
	applying bool
	status   string
	errText  string

	// Window dimensions
	width  int
	height int
}

type applyResultMsg struct {
	resp gateway.Response
	err  error
}

type exportResultMsg struct {
	path  string
	bytes int
	err   error
}

// New creates the form model.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ApplyTimeout <= 0 {
		opts.ApplyTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = checkStyle

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 512

	return &Model{
		spinner:    sp,
		input:      ti,
		preview:    viewport.New(80, 20),
		cfg:        opts.Config,
		opts:       opts,
		log:        opts.Logger,
		categories: catalog.Categories(),
		showHelp:   make(map[string]bool),
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Config returns the configuration being edited.
func (m *Model) Config() *profile.Configuration {
	return m.cfg
}

// Applying reports whether an apply is in flight.
func (m *Model) Applying() bool {
	return m.applying
}

// Err returns the error text shown next to the last action.
func (m *Model) Err() string {
	return m.errText
}

// Status returns the last success message.
func (m *Model) Status() string {
	return m.status
}

// visibleSettings lists the settings of the selected categories.
func (m *Model) visibleSettings() []catalog.Setting {
	return m.cfg.InScope()
}

func (m *Model) currentSetting() (catalog.Setting, bool) {
	settings := m.visibleSettings()
	if m.settingCursor < 0 || m.settingCursor >= len(settings) {
		return catalog.Setting{}, false
	}
	return settings[m.settingCursor], true
}

func (m *Model) previewText() (string, error) {
	return prefs.ToPreferencesText(m.cfg, prefs.TextOptions{
		Comments: m.opts.Comments,
		Header:   true,
		Now:      m.opts.Now,
	})
}

func (m *Model) refreshPreview() {
	text, err := m.previewText()
	if err != nil {
		m.setError("preview", err)
		text = ""
	}
	m.preview.SetContent(Highlight(text))
}

// applyCmd sends the current values through the transport.
func applyCmd(t gateway.Transport, req gateway.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := t.Send(ctx, req)
		return applyResultMsg{resp: resp, err: err}
	}
}

// exportCmd hands the export document to the export adapter.
func exportCmd(dl download.Adapter, data []byte) tea.Cmd {
	return func() tea.Msg {
		err := dl.Download(context.Background(), data, prefs.DefaultExportFilename)
		msg := exportResultMsg{bytes: len(data), err: err}
		if r, ok := dl.(download.Reporter); ok && err == nil {
			msg.path = r.LastResult().Path
		}
		return msg
	}
}

// Run starts the form full screen and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
