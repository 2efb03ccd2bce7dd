package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/specialistvlad/gridvm/internal/ctxlog"
	"github.com/specialistvlad/gridvm/internal/program"
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/internal/vm"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	prog     *program.Program

	// machine holds the VM of the active run so the health endpoint can
	// report its phase.
	machine atomic.Pointer[vm.VM]
}

// NewApp is the constructor for the main application. It returns a
// fully initialized App instance, including its own isolated logger and
// registry. Failing to load or validate the program is a fatal startup
// error and panics; the CLI boundary recovers it into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader program.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	prog, err := loader.Load(ctx, cfg.ProgramPath)
	if err != nil {
		panic(fmt.Errorf("failed to load program: %w", err))
	}
	logger.Debug("Program loaded and translated into unified model.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All operator modules registered.", "count", len(modules), "kinds", reg.Kinds())

	if err := reg.Validate(prog); err != nil {
		// A kind referenced by the program but missing from the binary
		// is a mismatch between code and config.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		prog:     prog,
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Program returns the loaded program model. This is primarily for
// testing.
func (a *App) Program() *program.Program {
	return a.prog
}
