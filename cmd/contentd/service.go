package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/contentd"
	"github.com/sagarc03/contentd/config"
	"github.com/sagarc03/contentd/filesystem"
)

// openService opens the content root and builds a Service over it. The
// returned close function releases the root.
func openService(cfg *config.Config) (*contentd.Service, func(), error) {
	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}
	closeRoot := func() { _ = root.Close() }

	store := filesystem.NewStore(root)
	service, err := contentd.NewService(cfg.ServiceConfig(), store, contentd.NewSlogReporter(nil))
	if err != nil {
		closeRoot()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	slog.Debug("content root opened", "path", cfg.Storage.Path, "extension", cfg.Storage.Extension)
	return service, closeRoot, nil
}
