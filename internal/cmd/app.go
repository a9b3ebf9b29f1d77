package cmd

import (
	"fmt"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/client"
	"github.com/campuscoders/campus-cli/pkg/config"
	"github.com/campuscoders/campus-cli/pkg/credentials"
	"github.com/campuscoders/campus-cli/pkg/logger"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/prompter"
	"github.com/campuscoders/campus-cli/pkg/service"
	"github.com/campuscoders/campus-cli/pkg/session"
	"github.com/campuscoders/campus-cli/pkg/storage"
)

// app is everything one invocation shares: one store, one HTTP client
// (and so one response cache and cookie jar) and one session gate.
type app struct {
	cfg    *config.Config
	store  *storage.Store
	client *client.Client
	env    *service.Env
}

func (r *root) open() (*app, error) {
	if r.app != nil {
		return r.app, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	c, err := client.NewFromConfig(store, "campus-cli/"+Version)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := api.New(c)
	snaps := credentials.Default()
	gate := session.NewGate(session.Deps{
		Backend:   a,
		Cookies:   c,
		Snapshots: snaps,
	})

	r.app = &app{
		cfg:    cfg,
		store:  store,
		client: c,
		env: &service.Env{
			API:         a,
			Gate:        gate,
			Out:         output.New(r.out, r.format()),
			Prompt:      prompter.New(r.in, r.errOut),
			Snapshots:   snaps,
			SearchLimit: cfg.Search.Limit,
		},
	}
	logger.Debug("App ready", "base_url", c.BaseURL(), "storage", cfg.Storage.Path)
	return r.app, nil
}

func (r *root) close() {
	if r.app == nil {
		return
	}
	if err := r.app.store.Close(); err != nil {
		logger.Warn("Failed to close local storage", "error", err)
	}
	r.app = nil
}
