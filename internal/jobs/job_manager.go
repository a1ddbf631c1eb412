package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// JobManager coordinates all background jobs in the application.
type JobManager struct {
	simulationRecoveryJob *SimulationRecoveryJob
	approvalRecoveryJob   *ApprovalRecoveryJob
}

func NewJobManager(
	restorer SimulationRestorer,
	keys SimulationKeyLister,
	shipments PendingApprovals,
	scheduler AutoRejectScheduler,
	recoverySchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		simulationRecoveryJob: NewSimulationRecoveryJob(restorer, keys, recoverySchedule, logger),
		approvalRecoveryJob:   NewApprovalRecoveryJob(shipments, scheduler, logger),
	}
}

// StartAll re-arms approval timers, then starts simulation recovery.
func (jm *JobManager) StartAll(ctx context.Context) error {
	if _, err := jm.approvalRecoveryJob.Run(ctx); err != nil {
		return fmt.Errorf("failed to run approval recovery job: %w", err)
	}

	if err := jm.simulationRecoveryJob.Start(ctx); err != nil {
		return fmt.Errorf("failed to start simulation recovery job: %w", err)
	}

	return nil
}

// StopAll stops scheduled jobs and waits for a running pass to finish.
func (jm *JobManager) StopAll() {
	jm.simulationRecoveryJob.Stop()
}
