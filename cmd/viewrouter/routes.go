package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/nerviz/viewrouter/internal/config"
	"github.com/nerviz/viewrouter/internal/errors"
	"github.com/nerviz/viewrouter/pkg/history"
	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/spf13/cobra"
)

type configLoader func() (*config.Config, error)

func routesCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List the configured routes in match order.

Routes whose pattern repeats an earlier one can never match; they are
reported after the table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			table, err := router.Compile(cfg.RouteTable())
			if err != nil {
				return errors.FromRouter(err)
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPATTERN\tVIEW")
			for i, e := range table.Entries() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i, e.Path, e.View)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			shadowed := table.Shadowed()
			if len(shadowed) == 0 {
				return nil
			}
			indexes := make([]int, 0, len(shadowed))
			for i := range shadowed {
				indexes = append(indexes, i)
			}
			sort.Ints(indexes)

			entries := table.Entries()
			fmt.Fprintln(out)
			for _, i := range indexes {
				fmt.Fprintf(out, "warning: route %d (%s) is shadowed by route %d\n", i, entries[i].Path, shadowed[i])
			}
			return nil
		},
	}
}

func resolveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which route a path matches",
		Long: `Resolve a path against the route table and print the match.

In hash mode an address such as "/#/users/1" is accepted as well.

Examples:
  viewrouter resolve /config
  viewrouter resolve "/users/42?tab=posts"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			mode, err := cfg.HistoryMode()
			if err != nil {
				return errors.New("R103").Wrap(err)
			}
			table, err := router.Compile(cfg.RouteTable())
			if err != nil {
				return errors.FromRouter(err)
			}

			path := args[0]
			if mode == history.Hash && strings.Contains(path, "#") {
				path = mode.Path(path)
			}

			res := table.Resolve(path)
			if !res.Matched {
				return errors.New("R203").
					WithDetail(fmt.Sprintf("No route matches %q (canonical %q)", args[0], res.Path)).
					WithSuggestion("Run 'viewrouter routes' to list the route table")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "route:  %d %s\n", res.Index, res.Entry.Path)
			fmt.Fprintf(out, "view:   %s\n", res.Entry.View)
			fmt.Fprintf(out, "path:   %s\n", res.Path)
			if res.Query != "" {
				fmt.Fprintf(out, "query:  %s\n", res.Query)
			}
			if len(res.Params) > 0 {
				names := make([]string, 0, len(res.Params))
				for name := range res.Params {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Fprintln(out, "params:")
				for _, name := range names {
					fmt.Fprintf(out, "  %s = %s\n", name, res.Params[name])
				}
			}
			return nil
		},
	}
}
