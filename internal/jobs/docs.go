// Package jobs provides scheduled background tasks for the ordering system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. BacklogMonitorJob - Periodically reports orders sitting in received
// status past a threshold, so the floor manager notices a stalled kitchen.
// The job observes only; it never mutates order state.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(backlogMonitorJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
package jobs
