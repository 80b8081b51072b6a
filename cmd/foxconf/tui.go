package main

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var (
		src       sourceFlags
		exportDir string
		hostPath  string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := src.build(a)
			if err != nil {
				return err
			}

			conn, err := a.connect(cmd.Context(), a.cfg, hostPath)
			if err != nil {
				return err
			}
			defer conn.close()

			return tui.Run(tui.Options{
				Config:    settings,
				Transport: conn,
				Export:    download.NewDirWriter(a.fs, exportDir),
				Comments:  a.cfg.Output.Comments,
				Logger:    a.log.With("tui"),
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory for exported documents")
	cmd.Flags().StringVar(&hostPath, "host", "", "Talk to this native host binary instead of an in-process gateway")
	return cmd
}
