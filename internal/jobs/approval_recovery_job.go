package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/domain/model/shipment"
)

type PendingApprovals interface {
	GetAllPendingApproval(ctx context.Context) ([]*shipment.Shipment, error)
}

type AutoRejectScheduler interface {
	ScheduleAutoReject(ctx context.Context, expiry approval.Expiry)
}

// ApprovalRecoveryJob re-arms approval timers lost with the previous process.
type ApprovalRecoveryJob struct {
	shipments PendingApprovals
	scheduler AutoRejectScheduler
	logger    *slog.Logger
}

func NewApprovalRecoveryJob(
	shipments PendingApprovals,
	scheduler AutoRejectScheduler,
	logger *slog.Logger,
) *ApprovalRecoveryJob {
	return &ApprovalRecoveryJob{
		shipments: shipments,
		scheduler: scheduler,
		logger:    logger.With("component", "approval_recovery_job"),
	}
}

// Run schedules an auto-reject for every pending approval and returns how
// many were armed.
func (j *ApprovalRecoveryJob) Run(ctx context.Context) (int, error) {
	pending, err := j.shipments.GetAllPendingApproval(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending approvals: %w", err)
	}

	armed := 0
	for _, s := range pending {
		if s.DriverID() == nil || s.AssignedAt() == nil {
			j.logger.WarnContext(ctx, "Pending approval without driver or assignment time",
				"shipment_id", s.ID())
			continue
		}
		j.scheduler.ScheduleAutoReject(ctx, approval.Expiry{
			ShipmentID: s.ID(),
			DriverID:   *s.DriverID(),
			TenantID:   s.TenantID(),
			AssignedAt: *s.AssignedAt(),
		})
		armed++
	}

	j.logger.InfoContext(ctx, "Approval timers re-armed", "count", armed)
	return armed, nil
}
