package cron_config

import "time"

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Orphan attachment sweep, every hour
	CronScheduleAttachmentSweep string `env:"CRON_SCHEDULE_ATTACHMENT_SWEEP" envDefault:"0 0 * * * *"`
	// Blobs younger than this are never swept, so uploads still being saved are safe
	AttachmentSweepGracePeriod time.Duration `env:"ATTACHMENT_SWEEP_GRACE_PERIOD" envDefault:"24h"`
}
