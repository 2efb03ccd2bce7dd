package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/builder"
	"github.com/specialistvlad/gridvm/internal/ctxlog"
	"github.com/specialistvlad/gridvm/internal/snapstore"
	"github.com/specialistvlad/gridvm/internal/sqlitestore"
	"github.com/specialistvlad/gridvm/internal/vm"
	"github.com/specialistvlad/gridvm/internal/zone"
)

// Run executes the loaded program: assemble the VM, run it to
// completion and report the outcome. A fatal zone escalation is
// returned as an error after the trace summary is logged.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	var store snapstore.Store
	if a.config.CheckpointDB != "" {
		db, err := sqlitestore.Open(a.config.CheckpointDB)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint database: %w", err)
		}
		defer db.Close()
		store = db
		a.logger.Info("Durable checkpoint store opened.", "path", a.config.CheckpointDB)
	}

	a.logger.Debug("Assembling VM from program model...")
	asm, err := builder.Build(ctx, a.prog, a.registry, store)
	if err != nil {
		return fmt.Errorf("failed to assemble VM: %w", err)
	}
	a.machine.Store(asm.VM)
	a.logger.Debug("VM assembled.", "operators", len(a.prog.Operators))

	runErr := func() error {
		if len(a.prog.Operators) == 0 {
			a.logger.Warn("No operators found in program, execution not required.")
			return nil
		}
		_, err := asm.VM.Run(ctx, asm.State, asm.Goal)
		return err
	}()

	a.summarize(asm.VM)

	var fatal *vm.FatalFaultError
	if errors.As(runErr, &fatal) {
		return fmt.Errorf("execution aborted: %w", fatal)
	}
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// summarize logs the run's trace and zone totals.
func (a *App) summarize(machine *vm.VM) {
	entries := machine.Trace()
	okCount := 0
	for _, e := range entries {
		if e.Outcome.OK {
			okCount++
		}
	}

	tripped := 0
	for _, z := range machine.Zones().Zones() {
		if z.Status() == zone.StatusTripped {
			tripped++
		}
	}

	a.logger.Info("Run summary.",
		"trace_entries", len(entries),
		"ok", okCount,
		"faults", len(entries)-okCount,
		"zones_tripped", tripped,
		"replayable", len(machine.ReplayBuffer()),
	)
}
