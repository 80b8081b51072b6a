package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

const guideMarkdown = `# Using foxconf

## 1. Choose your settings

Select the categories you care about (privacy, security, performance) and
adjust the settings they bring in. Each setting has a description and a
recommended default.

    foxconf list -c privacy
    foxconf tui

## 2. Generate user.js

    foxconf apply -c privacy -c security

This writes a file named ` + "`user.js`" + `. Move it into your Firefox profile
directory, or use ` + "`--target profile`" + ` to write it there directly:

| OS      | Profile directory |
|---------|-------------------|
| Windows | ` + "`%APPDATA%\\Mozilla\\Firefox\\Profiles\\<profile>`" + ` |
| macOS   | ` + "`~/Library/Application Support/Firefox/Profiles/<profile>`" + ` |
| Linux   | ` + "`~/.mozilla/firefox/<profile>`" + ` |

> **Tip:** open ` + "`about:support`" + ` in Firefox and look for *Profile Directory*,
> or run ` + "`foxconf profile`" + `.

## 3. Restart Firefox

Firefox reads user.js at startup. Restart the browser and your settings are
applied.
`

func newGuideCmd(a *app) *cobra.Command {
	var (
		raw   bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Show how to install a generated user.js",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), guideMarkdown)
				return err
			}
			renderer, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle("dark"),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(guideMarkdown)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}
