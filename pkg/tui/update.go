package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/prefs"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Width = msg.Width - 4
		m.preview.Height = max(msg.Height-8, 3)
		return m, nil

	case spinner.TickMsg:
		if !m.applying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case applyResultMsg:
		m.applying = false
		m.handleApplyResult(msg)
		return m, nil

	case exportResultMsg:
		if msg.err != nil {
			m.setError("export", msg.err)
			return m, nil
		}
		m.errText = ""
		m.status = fmt.Sprintf("Exported %s (%d bytes)", exportName(msg.path), msg.bytes)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func exportName(path string) string {
	if path == "" {
		return prefs.DefaultExportFilename
	}
	return path
}

func (m *Model) handleApplyResult(msg applyResultMsg) {
	if msg.err != nil {
		m.setError("apply", msg.err)
		return
	}
	if err := msg.resp.Err(); err != nil {
		m.setError("apply", err)
		return
	}
	var result gateway.ApplyResult
	if err := msg.resp.DecodeData(&result); err != nil {
		m.setError("apply", err)
		return
	}
	m.errText = ""
	target := result.Filename
	if result.Path != "" {
		target = result.Path
	}
	m.status = fmt.Sprintf("Applied %d settings to %s", result.Settings, target)
	m.log.Infof("applied %d settings to %s", result.Settings, target)
}

func (m *Model) setError(action string, err error) {
	m.status = ""
	m.errText = fmt.Sprintf("%s: %v", action, err)
	m.log.Warnf("%s failed: %v", action, err)
}

//nolint:gocyclo
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showPreview {
		switch msg.String() {
		case "p", "esc", "q":
			m.showPreview = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.switchPane()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case " ", "enter":
		return m, m.activate(msg.String())
	case "+", "=", "right", "l":
		m.nudge(1)
	case "-", "left", "h":
		m.nudge(-1)
	case "r":
		m.resetCurrent()
	case "?":
		if s, ok := m.currentSetting(); ok && m.focus == paneSettings {
			m.showHelp[s.ID] = !m.showHelp[s.ID]
		}
	case "p":
		m.showPreview = true
		m.refreshPreview()
		m.preview.GotoTop()
	case "e":
		return m, m.export()
	case "a":
		return m, m.apply()
	}
	return m, nil
}

func (m *Model) switchPane() {
	if m.focus == paneCategories {
		if len(m.visibleSettings()) > 0 {
			m.focus = paneSettings
		}
		return
	}
	m.focus = paneCategories
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case paneCategories:
		m.categoryCursor = clamp(m.categoryCursor+delta, 0, len(m.categories)-1)
	case paneSettings:
		m.settingCursor = clamp(m.settingCursor+delta, 0, len(m.visibleSettings())-1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// activate toggles the focused category or edits the focused setting.
func (m *Model) activate(key string) tea.Cmd {
	if m.focus == paneCategories {
		if m.categoryCursor < len(m.categories) {
			m.cfg.ToggleCategory(m.categories[m.categoryCursor].ID)
			m.settingCursor = clamp(m.settingCursor, 0, len(m.visibleSettings())-1)
			m.errText = ""
		}
		return nil
	}

	s, ok := m.currentSetting()
	if !ok {
		return nil
	}
	switch s.Type {
	case catalog.TypeBoolean:
		v, _ := m.cfg.CurrentValue(s.ID)
		b, _ := v.AsBool()
		m.setValue(s.ID, catalog.Bool(!b))
		return nil
	case catalog.TypeNumber:
		if len(s.Options) > 0 && key == " " {
			m.nudge(1)
			return nil
		}
	}
	return m.startEditing(s)
}

func (m *Model) nudge(delta int) {
	if m.focus != paneSettings {
		return
	}
	s, ok := m.currentSetting()
	if !ok || s.Type != catalog.TypeNumber {
		return
	}
	v, err := m.cfg.CurrentValue(s.ID)
	if err != nil {
		m.setError("edit", err)
		return
	}
	m.setValue(s.ID, s.Nudge(v, delta))
}

func (m *Model) resetCurrent() {
	if m.focus != paneSettings {
		return
	}
	if s, ok := m.currentSetting(); ok {
		if err := m.cfg.Reset(s.ID); err != nil {
			m.setError("reset", err)
		}
	}
}

func (m *Model) setValue(id string, v catalog.Value) {
	if err := m.cfg.SetValue(id, v); err != nil {
		m.setError("edit", err)
		return
	}
	m.errText = ""
}

func (m *Model) startEditing(s catalog.Setting) tea.Cmd {
	v, err := m.cfg.CurrentValue(s.ID)
	if err != nil {
		m.setError("edit", err)
		return nil
	}
	m.editing = true
	m.editID = s.ID
	m.input.SetValue(v.String())
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return m, nil
	case "enter":
		m.commitEdit()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitEdit() {
	s, err := m.cfg.Catalog().Get(m.editID)
	if err != nil {
		m.setError("edit", err)
		m.stopEditing()
		return
	}
	v, err := s.ParseValue(m.input.Value())
	if err == nil {
		err = m.cfg.SetValue(s.ID, v)
	}
	if err != nil {
		// Keep the editor open so the value can be fixed
		m.setError("edit", err)
		return
	}
	m.errText = ""
	m.stopEditing()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.editID = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) export() tea.Cmd {
	if m.opts.Export == nil {
		m.setError("export", fmt.Errorf("export is not configured"))
		return nil
	}
	doc := prefs.ToExportDocument(m.cfg, m.opts.Now())
	data, err := prefs.EncodeDocument(doc)
	if err != nil {
		m.setError("export", err)
		return nil
	}
	return exportCmd(m.opts.Export, data)
}

// apply starts an APPLY_SETTINGS round trip unless one is already in flight.
func (m *Model) apply() tea.Cmd {
	if m.applying {
		return nil
	}
	if m.opts.Transport == nil {
		m.setError("apply", fmt.Errorf("no gateway configured"))
		return nil
	}
	req, err := gateway.NewApplyRequestEntries(m.cfg.Values())
	if err != nil {
		m.setError("apply", err)
		return nil
	}
	m.applying = true
	m.status = ""
	m.errText = ""
	return tea.Batch(m.spinner.Tick, applyCmd(m.opts.Transport, req, m.opts.ApplyTimeout))
}
