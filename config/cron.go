package config

import "log"

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"heartbeatjob": {Schedule: "@every 1h", Job: func(...string) { log.Println("cron heartbeat") }},
	// Jobs needing DB access register themselves via cron.Register (see cron/jobs)
}
