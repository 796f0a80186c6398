package jobs

import "fmt"

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchRetryJob *DispatchRetryJob
	simulationJob    *SimulationJob
}

// NewJobManager creates a new job manager. simulationJob may be nil when
// provider simulation is disabled.
func NewJobManager(dispatchRetryJob *DispatchRetryJob, simulationJob *SimulationJob) *JobManager {
	return &JobManager{
		dispatchRetryJob: dispatchRetryJob,
		simulationJob:    simulationJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchRetryJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch retry job: %w", err)
	}

	if jm.simulationJob != nil {
		if err := jm.simulationJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.dispatchRetryJob.Stop()
			return fmt.Errorf("failed to start simulation job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.simulationJob != nil {
		jm.simulationJob.Stop()
	}
	jm.dispatchRetryJob.Stop()
}
