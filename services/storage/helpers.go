package storage

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/pkg/errors"

	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/services/storage/aws_client"
)

// NewMirror builds the configured attachment mirror. It returns nil when mirroring
// is disabled.
func NewMirror(cfg *config.StorageMirrorConfig) (interfaces.StorageService, error) {
	var service *ObjectStorageService
	var err error

	switch cfg.Provider {
	case "":
		return nil, nil
	case config.StorageMirrorS3:
		service, err = NewS3StorageService(cfg.AWSRegion, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket)
	case config.StorageMirrorR2:
		service, err = NewR2StorageService(cfg.R2AccountID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket)
	default:
		return nil, errors.Errorf("unknown storage mirror %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return service, nil
}

// NewS3StorageService creates a StorageService configured for AWS S3
func NewS3StorageService(awsRegion, accessKeyID, accessKeySecret, bucketName string) (*ObjectStorageService, error) {
	awsCfg := &aws.Config{Region: aws.String(awsRegion)}
	if accessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(accessKeyID, accessKeySecret, "")
	}

	s3Client, err := aws_client.NewS3Client(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create s3 client")
	}
	return NewStorageService(s3Client, bucketName), nil
}

// NewR2StorageService creates a StorageService configured for Cloudflare R2
func NewR2StorageService(accountID, accessKeyID, accessKeySecret, bucketName string) (*ObjectStorageService, error) {
	r2Client, err := aws_client.NewS3Client(&aws.Config{
		Endpoint:         aws.String("https://" + accountID + ".r2.cloudflarestorage.com"),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create r2 client")
	}
	return NewStorageService(r2Client, bucketName), nil
}
