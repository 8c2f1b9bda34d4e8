package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	cron_config "github.com/customeros/maildesk/internal/cron/config"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
)

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:           &AppConfig{},
		SMTPConfig:          &SMTPConfig{},
		StorageMirrorConfig: &StorageMirrorConfig{},
		CronConfig:          &cron_config.Config{},
		Logger:              &logger.Config{},
		Tracing:             &tracing.JaegerConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, errors.Wrap(err, "error loading maildesk config")
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.AppConfig.MaxContentLength <= 0 {
		return errors.New("MAX_CONTENT_LENGTH must be positive")
	}
	if c.SMTPConfig.DefaultSender == "" {
		c.SMTPConfig.DefaultSender = c.SMTPConfig.Username
	}
	switch c.StorageMirrorConfig.Provider {
	case "", StorageMirrorS3, StorageMirrorR2:
	default:
		return errors.Errorf("unknown STORAGE_MIRROR %q, expected s3 or r2", c.StorageMirrorConfig.Provider)
	}
	if c.StorageMirrorConfig.Provider == StorageMirrorR2 && c.StorageMirrorConfig.R2AccountID == "" {
		return errors.New("CLOUDFLARE_R2_ACCOUNT_ID is required for the r2 storage mirror")
	}
	return nil
}
