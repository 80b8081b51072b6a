package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/entrhq/foxconf/pkg/config"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/storage"
)

// connection is a transport plus whatever must be released after use.
type connection struct {
	gateway.Transport
	close func() error
}

// connect returns a transport to an in-process gateway, or to the native
// host binary at hostPath when one is given.
func (a *app) connect(ctx context.Context, cfg *config.Config, hostPath string) (*connection, error) {
	if hostPath != "" {
		return a.connectHost(ctx, hostPath)
	}

	store, err := cfg.OpenStorage(ctx)
	if err != nil {
		return nil, err
	}
	closeStore := func() error {
		if c, ok := store.(storage.Closer); ok {
			return c.Close()
		}
		return nil
	}

	locator, err := cfg.Locator(a.fs)
	if err != nil {
		closeStore()
		return nil, err
	}
	dl, err := cfg.DownloadAdapter(a.fs, locator)
	if err != nil {
		closeStore()
		return nil, err
	}

	g := gateway.New(store, dl, a.catalog, a.log.With("gateway"), cfg.GatewayOptions()).WithLocator(locator)
	return &connection{Transport: gateway.NewLocalTransport(g), close: closeStore}, nil
}

func (a *app) connectHost(ctx context.Context, hostPath string) (*connection, error) {
	cmd := exec.CommandContext(ctx, hostPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start native host %s: %w", hostPath, err)
	}
	a.log.Debugf("started native host %s (pid %d)", hostPath, cmd.Process.Pid)

	return &connection{
		Transport: gateway.NewNativeClient(stdout, stdin),
		close: func() error {
			// Closing stdin ends the host's read loop
			stdin.Close()
			return cmd.Wait()
		},
	}, nil
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		src      sourceFlags
		target   string
		hostPath string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply settings through the gateway",
		Long: `Send the selection to the gateway, which writes user.js to the configured
output and records the values in storage.

Examples:
  foxconf apply -c privacy -c security
  foxconf apply --from firefox-config.json --target profile
  foxconf apply -c performance --host /usr/local/bin/foxconf-host`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.empty() {
				return fmt.Errorf("nothing selected: pass --category, --set or --from")
			}
			settings, err := src.build(a)
			if err != nil {
				return err
			}

			cfg := *a.cfg
			if target != "" {
				cfg.Output.Target = config.OutputTarget(target)
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			conn, err := a.connect(cmd.Context(), &cfg, hostPath)
			if err != nil {
				return err
			}
			defer conn.close()

			req, err := gateway.NewApplyRequestEntries(settings.Values())
			if err != nil {
				return err
			}
			resp, err := gateway.Call(cmd.Context(), conn, req)
			if err != nil {
				return err
			}

			var result gateway.ApplyResult
			if err := resp.DecodeData(&result); err != nil {
				return err
			}
			where := result.Filename
			if result.Path != "" {
				where = result.Path
			}
			printSuccess(cmd.OutOrStdout(), "Applied %d settings to %s (%s)", result.Settings, where, humanize.Bytes(uint64(result.Bytes)))
			if cfg.Output.Target != config.TargetClipboard {
				fmt.Fprintln(cmd.OutOrStdout(), dimColor.Sprint("Restart Firefox for the changes to take effect."))
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", "Override output target: dir, profile or clipboard")
	cmd.Flags().StringVar(&hostPath, "host", "", "Talk to this native host binary instead of an in-process gateway")
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	var hostPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Print the settings recorded by the last apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context(), a.cfg, hostPath)
			if err != nil {
				return err
			}
			defer conn.close()

			resp, err := gateway.Call(cmd.Context(), conn, gateway.Request{Type: gateway.KindBackupProfile})
			if err != nil {
				return err
			}
			var items map[string]any
			if err := resp.DecodeData(&items); err != nil {
				return err
			}
			data, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&hostPath, "host", "", "Talk to this native host binary instead of an in-process gateway")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the default Firefox profile directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locator, err := a.cfg.Locator(a.fs)
			if err != nil {
				return err
			}
			dir, err := locator.DefaultProfile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
