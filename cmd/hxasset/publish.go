package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pthm/hxasset"
	"github.com/pthm/hxasset/lib/config"
)

// newPublishCmd creates the `publish` command.
// Usage: hxasset publish [dir...] [--manager name] [--base-url url]
func newPublishCmd(opts *rootOptions) *cobra.Command {
	var managerName, baseURL string

	cmd := &cobra.Command{
		Use:   "publish [dir...]",
		Short: "Print the public URLs of asset directories",
		Long: `Publishes the given directories (or every bundle in the bundle file when
no directory is given) and prints their URLs. The URLs match what
'hxasset serve' serves with the same bundle file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			return runPublishWith(cmd.OutOrStdout(), cfg, args, managerName, opts.logger)
		},
	}

	cmd.Flags().StringVarP(&managerName, "manager", "m", "", "named manager to publish with (default manager if empty)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL of the default manager (overrides the bundle file)")
	return cmd
}

// runPublishWith is the testable core of the publish command.
func runPublishWith(w io.Writer, cfg *config.Config, dirs []string, managerName string, logger *slog.Logger) error {
	reg, _, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		results, err := publishBundles(cfg, reg)
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Owner, r.URL, r.Dir)
		}
		return err
	}

	for _, dir := range dirs {
		b := config.Bundle{Owner: filepath.Base(filepath.Clean(dir)), Dir: dir, Manager: managerName}
		p := hxasset.NewPublisher(dir,
			hxasset.WithLocator(reg),
			hxasset.WithManager(managerName),
			hxasset.WithTranslator(ownerTranslator(b.Owner)),
		).Attach(&bundle{b})

		url, err := p.PublishedURL()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", url, dir)
	}
	return nil
}
