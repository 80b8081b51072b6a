// Package main provides foxconf-host, the native messaging host started by the
// foxconf Firefox extension. Requests arrive on stdin and responses leave on
// stdout, so nothing else may write to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/entrhq/foxconf/pkg/config"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/logging"
	"github.com/entrhq/foxconf/pkg/storage"
)

const version = "0.1.0"

// hostConfig holds command-line configuration
type hostConfig struct {
	ConfigFile  string
	LogStderr   bool
	ShowVersion bool

	// Firefox passes the manifest path and the calling extension id
	Args []string

	fs afero.Fs
}

func main() {
	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if cli.ShowVersion {
		// Only reached from a terminal; Firefox never passes -version
		fmt.Printf("foxconf-host v%s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "foxconf-host: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags(args []string, output io.Writer) (*hostConfig, error) {
	cli := &hostConfig{}

	fs := flag.NewFlagSet("foxconf-host", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (default ~/.foxconf/config.yaml)")
	fs.BoolVar(&cli.LogStderr, "log-stderr", false, "Log to stderr instead of the session log file")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "foxconf-host - native messaging host for the foxconf extension\n\n")
		fmt.Fprintf(output, "Usage: foxconf-host [options] [manifest-path] [extension-id]\n\n")
		fmt.Fprintf(output, "Firefox starts this program itself; register it with \"foxconf install-host\".\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cli.Args = fs.Args()
	return cli, nil
}

// run serves native messages until stdin closes or ctx is cancelled.
func run(ctx context.Context, cli *hostConfig, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog := openLogger(cfg, cli.LogStderr, stderr)
	defer closeLog()
	logger.SetLevel(logging.ParseLevel(cfg.Logging.Verbosity))

	if len(cli.Args) > 0 {
		logger.Infof("started by Firefox: %v", cli.Args)
	}

	store, err := cfg.OpenStorage(ctx)
	if err != nil {
		logger.Errorf("failed to open storage: %v", err)
		return err
	}
	if c, ok := store.(storage.Closer); ok {
		defer c.Close()
	}

	fs := cli.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	locator, err := cfg.Locator(fs)
	if err != nil {
		return err
	}
	dl, err := cfg.DownloadAdapter(fs, locator)
	if err != nil {
		logger.Errorf("failed to build download adapter: %v", err)
		return err
	}

	g := gateway.New(store, dl, nil, logger.With("gateway"), cfg.GatewayOptions()).WithLocator(locator)

	logger.Infof("serving native messages (storage=%s, output=%s)", cfg.Storage.Backend, cfg.Output.Target)
	if err := gateway.Serve(ctx, g, stdin, stdout); err != nil && ctx.Err() == nil {
		logger.Errorf("native messaging stopped: %v", err)
		return err
	}
	logger.Infof("stdin closed, exiting")
	return nil
}

func openLogger(cfg *config.Config, toStderr bool, stderr io.Writer) (*logging.Logger, func()) {
	if toStderr {
		return logging.NewWriterLogger("host", stderr), func() {}
	}
	if cfg.Logging.Dir != "" {
		logging.SetLogDirectory(cfg.Logging.Dir)
	}
	// Falls back to stderr, which Firefox shows in the browser console
	logger, _ := logging.NewLogger("host")
	return logger, func() { logger.Close() }
}
