// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based (github.com/robfig/cron/v3) and share one lifecycle:
//
//	jobManager := jobs.NewJobManager(releaseJob)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// StaleAssignmentReleaseJob cancels assignments that stayed in "assigned" longer than
// a configured TTL, which frees their riders for new dispatches. When several replicas
// run, a Locker keeps each tick on a single replica.
//
// # Error Handling
//
// A failed tick is logged and the next tick retries. A failed start stops the jobs that
// were already started.
package jobs
