package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newDocsCmd(a *app) *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:    "docs",
		Short:  "Generate command reference pages",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			root := cmd.Root()
			root.DisableAutoGenTag = true

			switch format {
			case "markdown", "md":
				if err := doc.GenMarkdownTree(root, outDir); err != nil {
					return err
				}
			case "man":
				header := &doc.GenManHeader{
					Title:   "FOXCONF",
					Section: "1",
					Source:  "foxconf " + version,
				}
				if err := doc.GenManTree(root, header, outDir); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (must be markdown or man)", format)
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s pages to %s", format, outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "./docs", "Output directory")
	cmd.Flags().StringVar(&format, "format", "markdown", "Page format: markdown or man")
	return cmd
}
