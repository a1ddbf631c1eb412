// Package jobs provides the background tasks that put a restarted process
// back in charge of work persisted by the previous one.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. SimulationRecoveryJob - at start-up and then on a schedule (default
// "@every 30s"), restores every persisted simulation that has no local
// task, keeping its current step.
// 2. ApprovalRecoveryJob - once at start-up, re-arms the approval timer of
// every shipment still awaiting driver approval. Deadlines are computed
// from the stored assignment time, so expired windows fire immediately.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(engine, store, shipments, scheduler, "@every 30s", logger)
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A key that fails to restore is logged and retried on the next run. A
// failure to list pending approvals fails StartAll, since auto-rejects
// would silently never fire.
package jobs
