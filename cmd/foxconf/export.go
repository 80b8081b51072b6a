package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/prefs"
	"github.com/entrhq/foxconf/pkg/profile"
)

// encodeConfiguration renders cfg as json, yaml or userjs.
func encodeConfiguration(cfg *profile.Configuration, format string, now time.Time) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return prefs.EncodeDocument(prefs.ToExportDocument(cfg, now))
	case "yaml", "yml":
		return prefs.EncodeDocumentYAML(prefs.ToExportDocument(cfg, now))
	case "userjs", "user.js", "js":
		text, err := prefs.ToPreferencesText(cfg, prefs.TextOptions{Header: true, Now: func() time.Time { return now }})
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unknown format %q (must be json, yaml or userjs)", format)
	}
}

func writeOutput(cmd *cobra.Command, fs afero.Fs, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	printSuccess(cmd.ErrOrStderr(), "Wrote %s", path)
	return nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selection as a versioned document",
		Long: `Export categories and values as a document that "foxconf import" and
"--from" can read back.

Examples:
  foxconf export -c privacy -o ` + prefs.DefaultExportFilename + `
  foxconf export -c security --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := src.build(a)
			if err != nil {
				return err
			}
			data, err := encodeConfiguration(cfg, format, time.Now())
			if err != nil {
				return err
			}
			return writeOutput(cmd, a.fs, out, data)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Read an exported document or user.js and convert it",
		Long: `Read an exported document (.json, .yaml) or a user.js and print it in
another format. Setting ids the catalog does not know are kept and reported.

Examples:
  foxconf import firefox-config.json --format userjs
  foxconf import user.js --format yaml -o prefs.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(a.fs, args[0], a.catalog)
			if err != nil {
				return err
			}
			for _, id := range unknownIDs(cfg) {
				printWarning(cmd.ErrOrStderr(), "%s is not in the catalog; kept as is", id)
			}
			data, err := encodeConfiguration(cfg, format, time.Now())
			if err != nil {
				return err
			}
			return writeOutput(cmd, a.fs, out, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml, userjs")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// validateConfiguration checks every stored value against the catalog,
// collecting all problems.
func validateConfiguration(cfg *profile.Configuration) error {
	return cfg.Catalog().ValidateValues(cfg.Map())
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a document or user.js against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(a.fs, args[0], a.catalog)
			if err != nil {
				return err
			}
			if err := validateConfiguration(cfg); err != nil {
				var merr *multierror.Error
				if errors.As(err, &merr) {
					for _, e := range merr.Errors {
						printFailure(cmd.OutOrStdout(), e)
					}
					return fmt.Errorf("%s: %d problems found", args[0], len(merr.Errors))
				}
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s: %d settings valid", args[0], cfg.Len())
			return nil
		},
	}
}
