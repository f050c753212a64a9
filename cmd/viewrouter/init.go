package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nerviz/viewrouter/internal/config"
	"github.com/nerviz/viewrouter/internal/errors"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var (
		name    string
		mode    string
		force   bool
		dirFlag string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create viewrouter.json with the default routes",
		Long: `Create viewrouter.json in the working directory (or --dir).

Examples:
  viewrouter init
  viewrouter init --name shop --history hash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirFlag
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return errors.FromError(err, "R300")
				}
				dir = wd
			}
			if config.Exists(dir) && !force {
				return errors.New("R301").
					WithDetail(config.ConfigFileName + " already exists in " + dir).
					WithSuggestion("Use --force to overwrite it")
			}

			cfg := config.New()
			if name != "" {
				cfg.Name = name
			}
			if mode != "" {
				cfg.History = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Application name")
	cmd.Flags().StringVar(&mode, "history", "", "History mode (web or hash)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&dirFlag, "dir", "", "Directory to create the file in")

	return cmd
}
