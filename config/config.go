package config

import (
	cron_config "github.com/customeros/maildesk/internal/cron/config"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/tracing"
)

type AppConfig struct {
	APIPort          string `env:"PORT" envDefault:"5000"`
	APIKey           string `env:"API_KEY"`
	DataFile         string `env:"DATA_FILE" envDefault:"emails.json"`
	AttachmentsDir   string `env:"ATTACHMENTS_DIR" envDefault:"attachments"`
	MaxContentLength int64  `env:"MAX_CONTENT_LENGTH" envDefault:"16777216"`
	RabbitMQURL      string `env:"RABBITMQ_URL"`
}

type SMTPConfig struct {
	Server        string `env:"MAIL_SERVER" envDefault:"smtp.gmail.com"`
	Port          int    `env:"MAIL_PORT" envDefault:"587"`
	UseTLS        bool   `env:"MAIL_USE_TLS" envDefault:"true"`
	Username      string `env:"MAIL_USERNAME"`
	Password      string `env:"MAIL_PASSWORD"`
	DefaultSender string `env:"MAIL_DEFAULT_SENDER"`
}

const (
	StorageMirrorS3 = "s3"
	StorageMirrorR2 = "r2"
)

type StorageMirrorConfig struct {
	Provider        string `env:"STORAGE_MIRROR"`
	Bucket          string `env:"STORAGE_MIRROR_BUCKET" envDefault:"maildesk-attachments"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"STORAGE_ACCESS_KEY_SECRET"`
	R2AccountID     string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
}

type Config struct {
	AppConfig           *AppConfig
	SMTPConfig          *SMTPConfig
	StorageMirrorConfig *StorageMirrorConfig
	CronConfig          *cron_config.Config
	Logger              *logger.Config
	Tracing             *tracing.JaegerConfig
}
