package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/foxconf/pkg/catalog"
)

var categoryIcons = map[string]string{
	"shield": "🛡",
	"lock":   "🔒",
	"zap":    "⚡",
}

// View implements tea.Model.
func (m *Model) View() string {
	var out strings.Builder

	out.WriteString(titleStyle.Render("🦊 foxconf: Firefox configurator"))
	out.WriteString("\n\n")

	if m.showPreview {
		out.WriteString(paneTitleStyle.Render("user.js preview"))
		out.WriteString("\n")
		out.WriteString(m.preview.View())
		out.WriteString("\n")
		out.WriteString(statusBarStyle.Render("↑↓/pgup/pgdn: Scroll • p/Esc: Close preview"))
		return out.String()
	}

	left := m.renderCategories()
	right := m.renderSettings()

	leftStyle, rightStyle := paneStyle, paneStyle
	if m.focus == paneCategories {
		leftStyle = focusedPaneStyle
	} else {
		rightStyle = focusedPaneStyle
	}
	leftWidth := 34
	rightWidth := max(m.width-leftWidth-6, 30)
	out.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Width(leftWidth).Render(left),
		rightStyle.Width(rightWidth).Render(right),
	))
	out.WriteString("\n")

	if m.editing {
		out.WriteString(m.input.View())
		out.WriteString("\n")
	}

	out.WriteString(m.renderActionLine())
	out.WriteString("\n")
	out.WriteString(statusBarStyle.Render(m.buildHelpText()))
	return out.String()
}

func (m *Model) renderCategories() string {
	var out strings.Builder

	title := paneTitleStyle
	if m.focus == paneCategories {
		title = focusedPaneTitleStyle
	}
	out.WriteString(title.Render("Categories"))
	out.WriteString("\n")

	for i, c := range m.categories {
		focused := m.focus == paneCategories && i == m.categoryCursor
		prefix := "  "
		label := labelStyle
		if focused {
			prefix = "➜ "
			label = focusedLabelStyle
		}
		check := "[ ]"
		if m.cfg.IsSelected(c.ID) {
			check = checkStyle.Render("[x]")
		}
		fmt.Fprintf(&out, "%s%s %s %s\n", prefix, check, categoryIcons[c.Icon], label.Render(c.Title))
		if focused {
			out.WriteString("    ")
			out.WriteString(descriptionStyle.Render(c.Description))
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (m *Model) renderSettings() string {
	var out strings.Builder

	title := paneTitleStyle
	if m.focus == paneSettings {
		title = focusedPaneTitleStyle
	}
	settings := m.visibleSettings()
	out.WriteString(title.Render(fmt.Sprintf("Settings (%d)", len(settings))))
	out.WriteString("\n")

	if len(settings) == 0 {
		out.WriteString(descriptionStyle.Render("Select a category to see its settings."))
		out.WriteString("\n")
		return out.String()
	}

	for i, s := range settings {
		out.WriteString(m.renderSetting(s, m.focus == paneSettings && i == m.settingCursor))
	}
	return out.String()
}

func (m *Model) renderSetting(s catalog.Setting, focused bool) string {
	var out strings.Builder

	prefix := "  "
	label := labelStyle
	if focused {
		prefix = "➜ "
		label = focusedLabelStyle
	}
	out.WriteString(prefix)

	v, err := m.cfg.CurrentValue(s.ID)
	if err != nil {
		out.WriteString(errorStyle.Render(err.Error()))
		out.WriteString("\n")
		return out.String()
	}

	switch s.Type {
	case catalog.TypeBoolean:
		check := "[ ]"
		if b, _ := v.AsBool(); b {
			check = checkStyle.Render("[x]")
		}
		fmt.Fprintf(&out, "%s %s", check, label.Render(s.Title))
	default:
		fmt.Fprintf(&out, "%s: %s", label.Render(s.Title), valueStyle.Render(s.Label(v)))
	}

	if !v.Equal(s.Default) {
		out.WriteString(modifiedStyle.Render(" *"))
	}
	if s.Advanced {
		out.WriteString(descriptionStyle.Render(" (advanced)"))
	}
	out.WriteString("\n")

	if focused {
		out.WriteString("    ")
		out.WriteString(descriptionStyle.Render(s.Description))
		out.WriteString("\n")
		if r := s.RangeText(); r != "" {
			out.WriteString("    ")
			out.WriteString(descriptionStyle.Render("Range: " + r))
			out.WriteString("\n")
		}
	}
	if m.showHelp[s.ID] && s.HelpText != "" {
		out.WriteString(helpTextStyle.Render(s.HelpText))
		out.WriteString("\n")
	}
	return out.String()
}

// renderActionLine shows the in-flight spinner or the result of the last
// action.
func (m *Model) renderActionLine() string {
	switch {
	case m.applying:
		return fmt.Sprintf("%s Applying settings...", m.spinner.View())
	case m.errText != "":
		return errorStyle.Render("✗ " + m.errText)
	case m.status != "":
		return successStyle.Render("✓ " + m.status)
	}
	return ""
}

// buildHelpText creates the help text based on current state
func (m *Model) buildHelpText() string {
	if m.editing {
		return "Enter: Save • Esc: Cancel"
	}

	shortcuts := []string{
		"↑↓/jk: Navigate",
		"Tab: Switch pane",
	}
	if m.focus == paneCategories {
		shortcuts = append(shortcuts, "Space/Enter: Toggle category")
	} else if s, ok := m.currentSetting(); ok {
		switch s.Type {
		case catalog.TypeBoolean:
			shortcuts = append(shortcuts, "Space/Enter: Toggle")
		case catalog.TypeNumber:
			shortcuts = append(shortcuts, "←→/+-: Adjust", "Enter: Edit")
		default:
			shortcuts = append(shortcuts, "Enter: Edit")
		}
		shortcuts = append(shortcuts, "r: Reset", "?: Help")
	}

	shortcuts = append(shortcuts, "p: Preview", "e: Export")
	if !m.applying {
		shortcuts = append(shortcuts, "a: Apply")
	}
	shortcuts = append(shortcuts, "q: Quit")
	return strings.Join(shortcuts, " • ")
}
