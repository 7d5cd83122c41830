package main

import (
	"context"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/config"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/gen"
)

func genCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate barrels, page groups and the route table",
		Long: `Generate every artifact once:

  • index.js barrels for each component and module directory
  • index.js scope barrels for each pages directory
  • pages.js and a dispatcher for each page group
  • the route table module and its JSON manifest

Files whose content is unchanged are not rewritten, so running gen twice
writes nothing the second time.

Examples:
  autoroute gen
  autoroute gen -C ./web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runGen(cmd, cfg, opts.verbose)
		},
	}

	return cmd
}

func newGenerator(cfg *config.Config, cmd *cobra.Command, verbose bool) *gen.Generator {
	return gen.New(osfs.New(cfg.Dir()), gen.Options{
		Layout:       cfg.Layout(),
		RoutesFile:   cfg.RoutesFile(),
		ManifestFile: cfg.ManifestFile(),
		Logger:       newLogger(cmd.ErrOrStderr(), verbose),
	})
}

func runGen(cmd *cobra.Command, cfg *config.Config, verbose bool) error {
	out := cmd.OutOrStdout()
	g := newGenerator(cfg, cmd, verbose)

	start := time.Now()
	results, err := g.All(context.Background())

	changed := 0
	for _, r := range results {
		for _, f := range r.Written {
			info(out, "wrote   %s", f)
			changed++
		}
		for _, f := range r.Created {
			info(out, "created %s", f)
			changed++
		}
	}
	if err != nil {
		return reportErrors(cmd.ErrOrStderr(), err)
	}

	if changed == 0 {
		success(out, "Up to date (%d routes)", len(g.Table()))
	} else {
		success(out, "Generated %d files, %d routes in %s", changed, len(g.Table()), time.Since(start).Round(time.Millisecond))
	}
	return nil
}
