package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm/hxasset"
	"github.com/pthm/hxasset/lib/config"
	"github.com/pthm/hxasset/lib/serve"
)

// bundle is the owner of a publisher created from a bundle file entry.
type bundle struct {
	config.Bundle
}

// ownerTranslator renders messages with the bundle's configured owner name
// in place of the Go type of the bundle.
func ownerTranslator(owner string) hxasset.Translator {
	return hxasset.TranslatorFunc(func(category, message string, params map[string]string) string {
		if owner != "" {
			params["{owner}"] = owner
		}
		return hxasset.Interpolate.Translate(category, message, params)
	})
}

// published is the outcome of publishing one bundle.
type published struct {
	Owner   string
	Dir     string
	Manager string
	URL     string
}

// loadConfig loads path, or DefaultFile if path is empty and it exists.
// With neither, an empty config is returned.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); errors.Is(err, os.ErrNotExist) {
			return &config.Config{}, nil
		}
		path = config.DefaultFile
	}
	return config.Load(path)
}

// buildRegistry creates one serve.Manager per declared manager plus the
// default one, and a registry resolving them.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*hxasset.Registry, []*serve.Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	common := []serve.Option{serve.WithLogger(logger)}
	if cfg.Key != "" {
		common = append(common, serve.WithKey([]byte(cfg.Key)))
	}

	def := serve.New(append(common, serve.WithBaseURL(cfg.DefaultManagerURL()))...)

	reg := hxasset.NewRegistry().SetDefaultManager(def)
	managers := []*serve.Manager{def}

	for _, m := range cfg.Managers {
		mgr := serve.New(append(common, serve.WithBaseURL(m.URL()))...)
		if err := reg.Register(m.Name, mgr); err != nil {
			return nil, nil, err
		}
		managers = append(managers, mgr)
	}
	return reg, managers, nil
}

// publishBundles publishes every bundle through reg.
// Stops at the first failure.
func publishBundles(cfg *config.Config, reg *hxasset.Registry) ([]published, error) {
	out := make([]published, 0, len(cfg.Bundles))
	for _, b := range cfg.Bundles {
		p := hxasset.NewPublisher(b.Dir,
			hxasset.WithLocator(reg),
			hxasset.WithManager(b.Manager),
			hxasset.WithTranslator(ownerTranslator(b.Owner)),
		).Attach(&bundle{b})

		url, err := p.PublishedURL()
		if err != nil {
			return out, fmt.Errorf("bundle %q: %w", b.Owner, err)
		}
		out = append(out, published{Owner: b.Owner, Dir: b.Dir, Manager: b.Manager, URL: url})
	}
	return out, nil
}
