package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

func resolveCmd(opts *globalOptions) *cobra.Command {
	var manifest bool

	cmd := &cobra.Command{
		Use:   "resolve <pathname>",
		Short: "Show which page a pathname resolves to",
		Long: `Resolve a pathname against the route table the way the client router
does: the last matching pattern wins, query and fragment are ignored and
parameters are decoded.

Examples:
  autoroute resolve /
  autoroute resolve /config/system
  autoroute resolve "/users/42?tab=posts"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			t, err := loadTable(cmd, cfg, manifest, opts.verbose)
			if err != nil {
				return err
			}

			m, ok := router.NewMatcher(t, router.WithCacheSize(0)).Match(args[0])
			if !ok {
				return errors.Newf(errors.CategoryCLI, "no route matches %s", args[0])
			}

			out := cmd.OutOrStdout()
			success(out, "%s → %s", args[0], headerStyle.Render(m.Route.Page))
			info(out, "pattern %s", m.Route.Path)
			if m.Route.Import != "" {
				info(out, "import  %s", m.Route.Import)
			}
			keys := make([]string, 0, len(m.Params))
			for k := range m.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				info(out, "%s = %s", k, fmt.Sprintf("%q", m.Params[k]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&manifest, "manifest", false, "Resolve against the generated manifest")

	return cmd
}
