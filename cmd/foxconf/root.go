package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/config"
	"github.com/entrhq/foxconf/pkg/logging"
)

// app carries state shared by every command.
type app struct {
	cfgPath string
	verbose bool

	cfg     *config.Config
	log     *logging.Logger
	catalog *catalog.Catalog
	fs      afero.Fs

	// ownsLog is set when the logger was opened by the root command.
	ownsLog bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "foxconf",
		Short: "Build Firefox user.js files from curated settings",
		Long: `foxconf turns a selection of privacy, security and performance
categories into a Firefox user.js file.

Examples:
  # Browse the catalog
  foxconf list --category privacy

  # Generate user.js for two categories with one override
  foxconf generate -c privacy -c security --set network.trr.mode=3

  # Write straight into the default Firefox profile
  foxconf apply -c privacy --target profile

  # Edit interactively
  foxconf tui`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Config file (default ~/.foxconf/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newGenerateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newValidateCmd(a),
		newApplyCmd(a),
		newBackupCmd(a),
		newProfileCmd(a),
		newInstallHostCmd(a),
		newGuideCmd(a),
		newTUICmd(a),
		newDocsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.catalog == nil {
		a.catalog = catalog.Default()
	}
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.log == nil {
		logging.SetLogDirectory(a.cfg.Logging.Dir)
		// NewLogger falls back to stderr on error and says so itself
		a.log, _ = logging.NewLogger("cli")
		a.ownsLog = true
	}

	level := logging.ParseLevel(a.cfg.Logging.Verbosity)
	if a.verbose {
		level = logging.LevelDebug
	}
	a.log.SetLevel(level)
	a.log.Debugf("config loaded (storage=%s, output=%s)", a.cfg.Storage.Backend, a.cfg.Output.Target)
	return nil
}

func (a *app) teardown() {
	if a.ownsLog && a.log != nil {
		a.log.Close()
	}
}
