package cron

import (
	"context"
	"os"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/maildesk/interfaces"
	cron_config "github.com/customeros/maildesk/internal/cron/config"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

const (
	// GroupAttachments is the group for jobs touching the attachments directory
	GroupAttachments = "attachments"

	JobHeartbeat       = "heartbeat"
	JobAttachmentSweep = "attachment_sweep"

	appSourceCron = "cron"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupAttachments: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg     *cron_config.Config
	log     logger.Logger
	cron    *cronv3.Cron
	jobIDs  map[string]cronv3.EntryID
	sweeper interfaces.AttachmentSweeper
}

func NewCronManager(cfg *cron_config.Config, log logger.Logger, sweeper interfaces.AttachmentSweeper) *CronManager {
	return &CronManager{
		cfg:     cfg,
		log:     log,
		jobIDs:  make(map[string]cronv3.EntryID),
		sweeper: sweeper,
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() error {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
		cm.cron = nil
	}
}

// registerJobs adds all cron jobs to the scheduler. An empty schedule disables a job.
func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	if cm.cfg.CronScheduleHeartbeat != "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "local"
		}
		id, err := c.AddFunc(cm.cfg.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from host: %s", hostname)
		})
		if err != nil {
			cm.log.Errorf("Could not add heartbeat cron job: %v", err)
			return err
		}
		cm.jobIDs[JobHeartbeat] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cm.cfg.CronScheduleHeartbeat)
	}

	if cm.cfg.CronScheduleAttachmentSweep != "" && cm.sweeper != nil {
		id, err := c.AddFunc(cm.cfg.CronScheduleAttachmentSweep, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupAttachments].Lock()
			defer jobLocks.locks[GroupAttachments].Unlock()
			cm.sweepOrphanAttachments()
		})
		if err != nil {
			cm.log.Errorf("Could not add attachment sweep cron job: %v", err)
			return err
		}
		cm.jobIDs[JobAttachmentSweep] = id
		cm.log.Infof("Registered attachment sweep job with schedule: %s", cm.cfg.CronScheduleAttachmentSweep)
	}

	return nil
}

func (cm *CronManager) sweepOrphanAttachments() {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: appSourceCron})

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.sweepOrphanAttachments")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	count, err := cm.sweeper.SweepOrphanAttachments(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to sweep orphan attachments: %v", err)
		return
	}

	cm.log.Infof("Attachment sweep completed, %d removed", count)
}
