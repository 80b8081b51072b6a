package main

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/config"
	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/prefs"
	"github.com/entrhq/foxconf/pkg/tui"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		src      sourceFlags
		comments bool
		noHeader bool
		colorize bool
		target   string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate user.js",
		Long: `Generate user.js text for the selected settings.

The file is printed to stdout unless --target or --out is given. Lines follow
the order in which settings entered the configuration.

Examples:
  foxconf generate -c privacy
  foxconf generate -c performance --set browser.sessionstore.interval=60000 --out ~/Downloads
  foxconf generate --from firefox-config.json --target profile`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.empty() {
				return fmt.Errorf("nothing selected: pass --category, --set or --from")
			}
			cfg, err := src.build(a)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("comments") {
				comments = a.cfg.Output.Comments
			}

			var buf bytes.Buffer
			err = prefs.WriteEntries(&buf, cfg.Values(), prefs.TextOptions{
				Catalog:  a.catalog,
				Comments: comments,
				Header:   !noHeader,
			})
			if err != nil {
				return err
			}

			if target == "" && outDir == "" {
				text := buf.String()
				if colorize {
					text = tui.Highlight(text)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}

			out := *a.cfg
			if target != "" {
				out.Output.Target = config.OutputTarget(target)
			}
			if outDir != "" {
				out.Output.Target = config.TargetDir
				out.Output.Dir = outDir
			}
			if err := out.Validate(); err != nil {
				return err
			}
			locator, err := out.Locator(a.fs)
			if err != nil {
				return err
			}
			dl, err := out.DownloadAdapter(a.fs, locator)
			if err != nil {
				return err
			}
			if err := dl.Download(cmd.Context(), buf.Bytes(), out.Output.Filename); err != nil {
				return err
			}

			where := out.Output.Filename
			if r, ok := dl.(download.Reporter); ok {
				where = r.LastResult().Path
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %d settings to %s (%s)", cfg.Len(), where, humanize.Bytes(uint64(buf.Len())))
			a.log.Infof("generated %d settings to %s", cfg.Len(), where)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&comments, "comments", true, "Add a comment block above each setting (default from config)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the generator banner")
	cmd.Flags().BoolVar(&colorize, "color", false, "Syntax-highlight output on stdout")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Deliver to dir, profile or clipboard instead of stdout")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write into this directory")
	return cmd
}
