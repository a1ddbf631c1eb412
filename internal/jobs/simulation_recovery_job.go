package jobs

import (
	"context"
	"log/slog"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"

	"github.com/robfig/cron/v3"
)

const DefaultRecoverySchedule = "@every 30s"

type SimulationRestorer interface {
	Restore(ctx context.Context, driverID kernel.UUID, tenantID kernel.TenantID) (bool, error)
	IsRunning(driverID kernel.UUID, tenantID kernel.TenantID) bool
}

type SimulationKeyLister interface {
	ListKeys(ctx context.Context, tenantID kernel.TenantID) ([]simulation.Key, error)
}

// SimulationRecoveryJob adopts persisted simulations nobody runs locally.
type SimulationRecoveryJob struct {
	restorer SimulationRestorer
	keys     SimulationKeyLister
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewSimulationRecoveryJob(
	restorer SimulationRestorer,
	keys SimulationKeyLister,
	schedule string,
	logger *slog.Logger,
) *SimulationRecoveryJob {
	if schedule == "" {
		schedule = DefaultRecoverySchedule
	}
	return &SimulationRecoveryJob{
		restorer: restorer,
		keys:     keys,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "simulation_recovery_job"),
	}
}

// Start runs one recovery pass and then schedules the rest.
func (j *SimulationRecoveryJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	}); err != nil {
		return err
	}

	j.Run(ctx)
	j.cron.Start()
	j.logger.InfoContext(ctx, "Simulation recovery job started", "schedule", j.schedule)
	return nil
}

func (j *SimulationRecoveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Simulation recovery job stopped")
}

// Run restores every persisted key without a local task and returns how
// many were restored.
func (j *SimulationRecoveryJob) Run(ctx context.Context) int {
	keys, err := j.keys.ListKeys(ctx, "")
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list persisted simulations", "error", err)
		return 0
	}

	restored := 0
	for _, key := range keys {
		if j.restorer.IsRunning(key.DriverID, key.TenantID) {
			continue
		}
		ok, rErr := j.restorer.Restore(ctx, key.DriverID, key.TenantID)
		if rErr != nil {
			j.logger.WarnContext(ctx, "Failed to restore simulation",
				"tenant_id", key.TenantID, "driver_id", key.DriverID, "error", rErr)
			continue
		}
		if ok {
			restored++
		}
	}

	if restored > 0 {
		j.logger.InfoContext(ctx, "Restored simulations", "count", restored)
	}
	return restored
}
