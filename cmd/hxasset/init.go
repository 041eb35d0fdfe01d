package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pthm/hxasset/lib/config"
	"github.com/pthm/hxasset/lib/scan"
)

// newInitCmd creates the `init` command.
// Usage: hxasset init [dir...]
func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		force    bool
		patterns []string
	)

	cmd := &cobra.Command{
		Use:   "init [dir...]",
		Short: "Write a bundle file declaring the given asset directories",
		Long: `Writes a bundle file (default: hxasset.toml; use --config for another
path or a .yaml extension) with one bundle per directory. Each bundle is
owned by the directory's base name and uses the default manager.

With --scan, Go packages matching the patterns are searched for
hxasset.NewPublisher calls with a literal directory, and each one
becomes a bundle owned by the enclosing type or function.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultFile
			}
			return runInitWith(cmd.OutOrStdout(), path, args, patterns, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing bundle file")
	cmd.Flags().StringSliceVar(&patterns, "scan", nil, "package patterns to search for publishers (e.g. ./...)")
	return cmd
}

// runInitWith is the testable core of the init command.
func runInitWith(w io.Writer, path string, dirs, patterns []string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}

	cfg := &config.Config{Listen: defaultListen}
	for _, dir := range dirs {
		cfg.Bundles = append(cfg.Bundles, config.Bundle{
			Owner: filepath.Base(filepath.Clean(dir)),
			Dir:   relativeTo(base, dir),
		})
	}
	if len(patterns) > 0 {
		decls, err := scan.New().Scan(patterns...)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		declared := make(map[string]bool)
		for _, d := range decls {
			if d.Manager != "" && !declared[d.Manager] {
				declared[d.Manager] = true
				cfg.Managers = append(cfg.Managers, config.Manager{Name: d.Manager})
			}
			cfg.Bundles = append(cfg.Bundles, config.Bundle{
				Owner:   d.Owner,
				Dir:     relativeTo(base, d.Dir),
				Manager: d.Manager,
			})
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s with %d bundle(s)\n", path, len(cfg.Bundles))
	return nil
}

// relativeTo rewrites dir relative to base, since bundle files resolve
// relative directories against their own location.
func relativeTo(base, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return abs
	}
	return rel
}
