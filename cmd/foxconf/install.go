package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/firefox"
)

func newInstallHostCmd(a *app) *cobra.Command {
	var (
		hostPath     string
		extensionIDs []string
		dir          string
	)

	cmd := &cobra.Command{
		Use:   "install-host",
		Short: "Register the native messaging host with Firefox",
		Long: `Write the native messaging manifest that lets the foxconf extension start
foxconf-host.

On Windows the manifest is written under %APPDATA%; a registry key under
HKCU\Software\Mozilla\NativeMessagingHosts\foxconf must point at it.

Examples:
  foxconf install-host --path /usr/local/bin/foxconf-host
  foxconf install-host --path ./foxconf-host --extension-id my-fork@example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hostPath == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("--path is required: %w", err)
				}
				hostPath = filepath.Join(filepath.Dir(exe), "foxconf-host")
			}
			abs, err := filepath.Abs(hostPath)
			if err != nil {
				return err
			}

			if dir == "" {
				locator, err := a.cfg.Locator(a.fs)
				if err != nil {
					return err
				}
				if dir, err = locator.NativeHostsDir(); err != nil {
					return err
				}
			}

			path, err := firefox.InstallHost(a.fs, dir, firefox.NewHostManifest(abs, extensionIDs...))
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Installed %s manifest at %s", firefox.HostName, path)
			a.log.Infof("installed native host manifest at %s for %s", path, abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&hostPath, "path", "", "Path to the foxconf-host binary (default: next to foxconf)")
	cmd.Flags().StringSliceVar(&extensionIDs, "extension-id", nil, "Allowed extension id; repeatable (default "+firefox.DefaultExtensionID+")")
	cmd.Flags().StringVar(&dir, "dir", "", "Manifest directory (default: per-user Firefox location)")
	return cmd
}
