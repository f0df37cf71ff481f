package di

import (
	"context"
	"fmt"
	"log/slog"

	"stock_signals/internal/platform/scheduler"
)

// Job names registered on the scheduler.
const (
	JobScore  = "score"
	JobScan   = "scan"
	JobIngest = "ingest"
	JobPurge  = "purge"
)

// JobNames は RunOnStart で実行する順序です。
var JobNames = []string{JobIngest, JobScore, JobScan, JobPurge}

// RegisterJobs registers the periodic jobs. A job whose schedule is "off" is
// still registered for RunNow but never fires on its own.
func (c *Container) RegisterJobs(s *scheduler.Scheduler) error {
	sc := c.Config.Schedule
	jobs := []struct {
		name string
		spec string
		job  scheduler.Job
	}{
		{JobIngest, sc.Spec(sc.Ingest), c.ingestJob},
		{JobScore, sc.Spec(sc.Score), c.scoreJob},
		{JobScan, sc.Spec(sc.Scan), c.scanJob},
		{JobPurge, sc.Spec(sc.Purge), c.purgeJob},
	}
	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.job); err != nil {
			return fmt.Errorf("register %s: %w", j.name, err)
		}
	}
	return nil
}

// StartScheduler registers the jobs on a scheduler bound to ctx and starts it.
// Jobs publish through this container's Hub and Metrics, so the process that
// calls StartScheduler must also be the one serving /ws/signals and /metrics.
// The caller stops the returned scheduler.
func (c *Container) StartScheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	loc, err := c.Config.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone: %w", err)
	}
	s := scheduler.New(ctx, loc, c.Config.Schedule.JobTimeout)
	if err := c.RegisterJobs(s); err != nil {
		return nil, err
	}

	if c.Config.Schedule.RunOnStart {
		go func() {
			for _, name := range JobNames {
				// 失敗はログに出力済み。残りのジョブは続行する
				_ = s.RunNow(name)
			}
		}()
	}

	s.Start()
	return s, nil
}

func (c *Container) ingestJob(ctx context.Context) error {
	symbols, err := c.Symbols.ListActiveCodes(ctx)
	if err != nil {
		return fmt.Errorf("load symbols: %w", err)
	}
	return c.Ingest.IngestAll(ctx, symbols)
}

func (c *Container) scoreJob(ctx context.Context) error {
	sum, err := c.Scoring.ScoreAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("score job done", "scored", sum.Scored, "failed", sum.Failed)
	return nil
}

func (c *Container) scanJob(ctx context.Context) error {
	sum, err := c.Scan.ScanAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("scan job done", "scanned", sum.Scanned, "failed", sum.Failed, "events", sum.Events)
	return nil
}

func (c *Container) purgeJob(ctx context.Context) error {
	n, err := c.Scoring.Purge(ctx, c.Config.Scoring.RetentionDays)
	if err != nil {
		return err
	}
	slog.Info("purge job done", "deleted", n)
	return nil
}
