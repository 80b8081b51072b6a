package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/catalog"
)

func newListCmd(a *app) *cobra.Command {
	var (
		categories []string
		match      string
		asJSON     bool
		advanced   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog settings",
		Long: `List the settings foxconf knows about.

Examples:
  # Everything
  foxconf list

  # Only performance settings
  foxconf list -c performance

  # Every network.* preference, as JSON
  foxconf list --match 'network.**' --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := selectSettings(a.catalog, categories, match)
			if err != nil {
				return err
			}
			if !advanced {
				settings = basicOnly(settings)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(settings)
			}

			if len(settings) == 0 {
				printWarning(cmd.OutOrStdout(), "no settings match")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), settingsTable(settings))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Only settings in these categories")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only ids matching a glob, e.g. 'privacy.*' or 'network.**'")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", true, "Include advanced settings")
	return cmd
}

func selectSettings(c *catalog.Catalog, categories []string, match string) ([]catalog.Setting, error) {
	settings := c.Settings()
	if match != "" {
		matched, err := c.Match(match)
		if err != nil {
			return nil, err
		}
		settings = matched
	}
	if len(categories) == 0 {
		return settings, nil
	}

	ids := make([]catalog.CategoryID, 0, len(categories))
	for _, name := range categories {
		id := catalog.CategoryID(strings.ToLower(name))
		if !catalog.IsCategory(id) {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		ids = append(ids, id)
	}
	var out []catalog.Setting
	for _, s := range settings {
		if s.Intersects(ids) {
			out = append(out, s)
		}
	}
	return out, nil
}

func basicOnly(settings []catalog.Setting) []catalog.Setting {
	var out []catalog.Setting
	for _, s := range settings {
		if !s.Advanced {
			out = append(out, s)
		}
	}
	return out
}

func settingsTable(settings []catalog.Setting) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "TYPE", "DEFAULT", "CATEGORIES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, s := range settings {
		cats := make([]string, len(s.Categories))
		for i, c := range s.Categories {
			cats[i] = string(c)
		}
		t.Row(s.ID, s.Title, string(s.Type), s.Label(s.Default), strings.Join(cats, ","))
	}
	return t.Render()
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <setting-id>",
		Short: "Show one setting in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.catalog.Get(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", idColor.Sprint(s.ID))
			fmt.Fprintf(w, "  Title:       %s\n", s.Title)
			fmt.Fprintf(w, "  Description: %s\n", s.Description)
			if s.HelpText != "" {
				fmt.Fprintf(w, "  Note:        %s\n", s.HelpText)
			}
			fmt.Fprintf(w, "  Type:        %s\n", s.Type)
			fmt.Fprintf(w, "  Default:     %s\n", s.Default.Literal())
			if r := s.RangeText(); r != "" {
				fmt.Fprintf(w, "  Range:       %s\n", r)
			}
			cats := make([]string, len(s.Categories))
			for i, c := range s.Categories {
				cats[i] = string(c)
			}
			fmt.Fprintf(w, "  Categories:  %s\n", strings.Join(cats, ", "))
			if s.Advanced {
				fmt.Fprintf(w, "  %s\n", dimColor.Sprint("Advanced setting"))
			}
			return nil
		},
	}
}
