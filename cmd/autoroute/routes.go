package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/config"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

func routesCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON   bool
		manifest bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the route table derived from the pages tree, in resolution order.
Later entries win when more than one pattern matches.

Nothing is written. With --manifest the table is read from the generated
JSON manifest instead of the pages tree.

Examples:
  autoroute routes
  autoroute routes --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			t, err := loadTable(cmd, cfg, manifest, opts.verbose)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := t.MarshalIndent()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			if len(t) == 0 {
				warn(out, "No routes under %s", cfg.Layout().Pages)
				return nil
			}
			fmt.Fprintln(out, renderTable(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as JSON")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "Read the table from the generated manifest")

	return cmd
}

// loadTable builds the route table from the pages tree, or reads the
// manifest when fromManifest is set.
func loadTable(cmd *cobra.Command, cfg *config.Config, fromManifest, verbose bool) (router.Table, error) {
	if fromManifest {
		if !cfg.HasManifest() {
			return nil, fmt.Errorf("the manifest is disabled in %s", cfg.Path())
		}
		return router.LoadTableFile(filepath.Join(cfg.Dir(), filepath.FromSlash(cfg.ManifestFile())))
	}
	return newGenerator(cfg, cmd, verbose).BuildRoutes()
}

func renderTable(t router.Table) string {
	rows := make([][]string, 0, len(t))
	for i, r := range t {
		params := strings.Join(r.Params(), ", ")
		rows = append(rows, []string{fmt.Sprint(i + 1), r.Path, r.Page, params, r.Import})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("#", "PATH", "PAGE", "PARAMS", "IMPORT").
		Rows(rows...).
		String()
}
