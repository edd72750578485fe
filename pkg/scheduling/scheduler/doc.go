/*
Package scheduler runs jobs repeatedly on a workerpool.Pool.

Each entry keeps exactly one occurrence queued on the pool as an absolute-time
task. When that occurrence runs it first queues the next one, then runs the
job, so a slow or panicking job never stops its entry.

	pool := workerpool.New()
	defer pool.Close()

	s, err := scheduler.New(pool, scheduler.Config{Location: time.UTC})
	if err != nil {
		return err
	}
	defer s.Close()

	s.ScheduleRepeating("heartbeat", 30*time.Second, sendHeartbeat)
	s.ScheduleCron("report", "0 9 * * 1-5", buildReport)

Cron expressions are parsed with github.com/robfig/cron/v3. Five fields start
with minutes, six start with seconds, and descriptors such as "@daily" or
"@every 1h30m" are accepted.

Cancelling an entry leaves its queued occurrence on the pool, where it runs
as a no-op.
*/
package scheduler
