// Package cli provides the scriptlets command-line application.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/config"
	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config     *config.Config
	ConfigFile string
	Theme      *styles.Theme
	Engine     *filtering.Engine

	// Context with logger
	ctx    context.Context
	logger zerolog.Logger
}

// NewApp loads configFile (or the XDG default when empty) and wires the
// engine around the embedded catalog.
func NewApp(configFile string) (*App, error) {
	mgr, err := config.NewManager(configFile)
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
		Output:     os.Stderr,
	})
	ctx := logging.WithContext(context.Background(), logger)
	ctx = logging.WithComponent(ctx, "cli")

	engine, err := filtering.NewDefaultEngine()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("config", mgr.GetConfigFile()).
		Int("scriptlets", len(engine.Registry().Scriptlets())).
		Int("redirects", len(engine.Registry().Redirects())).
		Msg("catalog loaded")

	return &App{
		Config:     cfg,
		ConfigFile: mgr.GetConfigFile(),
		Theme:      styles.NewTheme(),
		Engine:     engine,
		ctx:        ctx,
		logger:     logger,
	}, nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// ListCompiler builds a list compiler targeting target from the compiler
// settings.
func (a *App) ListCompiler(target dialect.Tag, strict bool) (*filtering.ListCompiler, error) {
	return filtering.NewListCompiler(a.Engine.Converter(), filtering.CompileOptions{
		Target:    target,
		Workers:   a.Config.Compiler.Workers,
		CacheSize: a.Config.Compiler.CacheSize,
		Strict:    strict,
	})
}

// ListStore opens the compiled-list cache. It returns nil when caching is
// disabled.
func (a *App) ListStore() (*filtering.FileListStore, error) {
	if a.Config.Compiler.CacheDir == "" {
		return nil, nil
	}
	return filtering.NewFileListStore(a.Config.Compiler.CacheDir, a.logger)
}
