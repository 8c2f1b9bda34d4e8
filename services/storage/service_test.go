package storage

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/maildesk/config"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) Upload(ctx context.Context, input s3manager.UploadInput) error {
	body, _ := io.ReadAll(input.Body)
	args := m.Called(aws.StringValue(input.Bucket), aws.StringValue(input.Key), string(body), aws.StringValue(input.ContentType))
	return args.Error(0)
}

func (m *mockS3Client) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(bucket, key).Error(0)
}

func TestObjectStorageService(t *testing.T) {
	client := &mockS3Client{}
	client.On("Upload", "bucket", "attachments/a_report.pdf", "pdf-bytes", "application/pdf").Return(nil)
	client.On("Delete", "bucket", "attachments/a_report.pdf").Return(errors.New("denied"))

	service := NewStorageService(client, "bucket")
	ctx := context.Background()

	require.NoError(t, service.Upload(ctx, "attachments/a_report.pdf", []byte("pdf-bytes"), "application/pdf"))

	assert.EqualError(t, service.Delete(ctx, "attachments/a_report.pdf"), "denied")
	client.AssertExpectations(t)
}

func TestNewMirror(t *testing.T) {
	mirror, err := NewMirror(&config.StorageMirrorConfig{})
	require.NoError(t, err)
	assert.Nil(t, mirror)

	mirror, err = NewMirror(&config.StorageMirrorConfig{Provider: config.StorageMirrorR2, R2AccountID: "acc", Bucket: "b", AccessKeyID: "k", AccessKeySecret: "s"})
	require.NoError(t, err)
	assert.NotNil(t, mirror)

	_, err = NewMirror(&config.StorageMirrorConfig{Provider: "ftp"})
	assert.Error(t, err)
}
