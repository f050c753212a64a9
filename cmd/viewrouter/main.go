package main

import (
	"fmt"
	"os"

	"github.com/nerviz/viewrouter/internal/config"
	"github.com/nerviz/viewrouter/internal/errors"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "viewrouter",
		Short: "Serve a single-page application from a route table",
		Long: `viewrouter maps URL paths to views and serves them to the browser.

The browser keeps the real history stack; the server resolves every
navigation against the route table in viewrouter.json and sends back
the rendered view over a WebSocket.

Configuration is read from viewrouter.json in the working directory or
one of its parents, or from the file named by --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to viewrouter.json")

	load := func() (*config.Config, error) {
		return loadConfig(configPath)
	}

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(load),
		routesCmd(load),
		resolveCmd(load),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the named file, or searches upward from the working
// directory. Without a file the defaults are used. Environment overrides
// are applied before validation.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	default:
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, errors.FromError(wdErr, "R300")
		}
		root, findErr := config.FindProjectRoot(wd)
		if findErr != nil {
			cfg = config.New()
			break
		}
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
