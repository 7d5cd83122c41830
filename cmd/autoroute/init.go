package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/templates"
)

func initCmd(opts *globalOptions) *cobra.Command {
	var (
		templateName string
		name         string
		port         int
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter project",
		Long: fmt.Sprintf(`Create a starter project in dir (default: the current directory).

Templates:
  %s

Examples:
  autoroute init my-app
  autoroute init my-app --template=groups`, strings.Join(templates.List(), "\n  ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if opts.dir != "" {
				dir = opts.dir
			}
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, templateName, name, port, force)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "minimal", "Project template")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Package name (default: directory name)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Inspection API port written to autoroute.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Write into a non-empty directory")

	return cmd
}

func runInit(cmd *cobra.Command, dir, templateName, name string, port int, force bool) error {
	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	projectDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if !force {
		if entries, err := os.ReadDir(projectDir); err == nil && len(entries) > 0 {
			return errors.New("E502").
				WithPath(projectDir).
				WithSuggestion("Choose an empty directory or pass --force")
		}
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return errors.New("E302").WithPath(projectDir).Wrap(err)
	}

	if name == "" {
		name = strings.ToLower(filepath.Base(projectDir))
	}

	out := cmd.OutOrStdout()
	info(out, "Creating project from '%s' template...", tmpl.Name)
	if err := tmpl.Create(osfs.New(projectDir), templates.Config{
		ProjectName: name,
		Port:        port,
	}); err != nil {
		return err
	}

	success(out, "Created %s", projectDir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  To get started:")
	fmt.Fprintln(out)
	if dir != "." {
		fmt.Fprintf(out, "    cd %s\n", dir)
	}
	fmt.Fprintln(out, "    npm install")
	fmt.Fprintln(out, "    autoroute dev")
	fmt.Fprintln(out)
	return nil
}
