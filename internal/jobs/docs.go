// Package jobs provides scheduled background tasks for the ordering system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic operations the orchestrator depends on.
//
// # Available Jobs
//
// 1. DispatchRetryJob - Runs every 30 seconds to re-attempt courier dispatch
// for delivery orders that reached ready without a recorded courier job.
// Orders stuck past the retry window raise a one-time staff alert instead.
//
// 2. SimulationJob - Runs every 10 seconds when provider simulation is
// enabled. It synthesizes provider webhook payloads for active orders and
// feeds them through the real webhook command handlers, so a development
// environment without POS or courier accounts still moves orders through
// the full lifecycle.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(dispatchRetryJob, simulationJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - The dispatch retry job logs dispatch failures and keeps retrying while
// the order stays in ready; the per-order lock makes a retried dispatch safe.
// - The simulation job swallows the same anomalies the webhook endpoints
// swallow, because it goes through the same handlers.
// - Failed job starts will stop any already running jobs.
package jobs
