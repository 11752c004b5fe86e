package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	apisrv "github.com/instrumentd/typestore/server/api"
	"github.com/instrumentd/typestore/typestore-app/config"
	"github.com/instrumentd/typestore/x/typestore"
)

// App wires the type store, its metrics and the introspection API together.
type App struct {
	cfg   *config.Config
	log   zerolog.Logger
	store typestore.TypeStore

	apiServer *apisrv.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log.With().Str("component", "app").Logger(),
	}

	var m *typestore.Metrics
	if cfg.Metrics.Enabled {
		m = typestore.NewMetrics()
	}

	store, err := typestore.New(typestore.Config{Logger: log, Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("failed to create type store: %w", err)
	}
	app.store = store

	app.apiServer = apisrv.NewServer(cfg.API, log)
	apisrv.NewHandler(store, log).Register(app.apiServer.Router)
	if cfg.Metrics.Enabled {
		app.apiServer.Router.Handle(cfg.Metrics.Path, m.Handler())
	}
	app.apiServer.EnableCORS()

	if cfg.Seed.File != "" {
		if err := app.loadSeed(cfg.Seed.File); err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
	}

	return app, nil
}

// Run serves until a shutdown signal arrives, then tears the store down.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		a.store.Destroy()
		a.log.Info().Msg("type store destroyed")
	}()

	return a.apiServer.Start(ctx)
}

// seedFile is the YAML fixture format: named kinds, each with textual values
// decoded through the kind's parse routine.
type seedFile struct {
	Kinds []struct {
		Name   string `yaml:"name"`
		Kind   string `yaml:"kind"`
		Values []struct {
			Name   string   `yaml:"name"`
			Fields []string `yaml:"fields"`
		} `yaml:"values"`
	} `yaml:"kinds"`
}

func (a *App) loadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for _, k := range seed.Kinds {
		behavior := behaviorFor(k.Kind)
		if _, err := a.store.Register(k.Name, behavior); err != nil {
			return fmt.Errorf("register kind %q: %w", k.Name, err)
		}
		for _, v := range k.Values {
			payload, err := a.store.Parse(k.Name, v.Fields)
			if err != nil {
				return fmt.Errorf("parse %s/%s: %w", k.Name, v.Name, err)
			}
			if err := a.store.Store(k.Name, v.Name, payload, behavior); err != nil {
				return fmt.Errorf("store %s/%s: %w", k.Name, v.Name, err)
			}
		}
		a.log.Info().
			Str("kind", k.Name).
			Int("values", len(k.Values)).
			Msg("seeded kind")
	}
	return nil
}

// Built-in behaviors for the seed fixture. Each is a package-level handle so
// re-running a seed against a live store presents the same identity.
var (
	stringBehavior = &typestore.Callbacks{
		Print: func(w io.Writer, payload any) { fmt.Fprintf(w, "%q", payload) },
		Free:  func(any) {},
		Compare: func(a, b any) int {
			return strings.Compare(a.(string), b.(string))
		},
		Parse: func(fields []string) (any, error) {
			return strings.Join(fields, " "), nil
		},
	}

	intBehavior = &typestore.Callbacks{
		Print: func(w io.Writer, payload any) { fmt.Fprintf(w, "%d", payload) },
		Free:  func(any) {},
		Compare: func(a, b any) int {
			return a.(int) - b.(int)
		},
		Parse: func(fields []string) (any, error) {
			if len(fields) == 0 {
				return nil, fmt.Errorf("integer value requires one field")
			}
			return strconv.Atoi(strings.TrimSpace(fields[0]))
		},
	}
)

func behaviorFor(kind string) *typestore.Callbacks {
	switch kind {
	case "int":
		return intBehavior
	default:
		return stringBehavior
	}
}
