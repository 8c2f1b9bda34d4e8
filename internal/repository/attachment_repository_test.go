package repository

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/logger"
)

const testAttachmentsDir = "/data/attachments"

type mockStorageService struct {
	mock.Mock
}

func (m *mockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(key, string(data), contentType).Error(0)
}

func (m *mockStorageService) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

func newTestAttachmentRepository(fs afero.Fs) *AttachmentRepository {
	repo := NewAttachmentRepository(fs, testAttachmentsDir, nil, logger.NewNopLogger())
	_ = repo.Init(context.Background())
	return repo
}

func TestAttachmentRepository_SaveAllowList(t *testing.T) {
	repo := newTestAttachmentRepository(afero.NewMemMapFs())
	ctx := context.Background()

	_, err := repo.Save(ctx, "virus.exe", strings.NewReader("MZ"))
	assert.ErrorIs(t, err, er.ErrExtensionNotAllowed)
	assert.True(t, er.IsInvalidInput(err))

	_, err = repo.Save(ctx, "README", strings.NewReader("text"))
	assert.ErrorIs(t, err, er.ErrMissingExtension)
	assert.True(t, er.IsInvalidInput(err))

	storedName, err := repo.Save(ctx, "report.PDF", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Regexp(t, `^\d{20}[0-9a-f]{8}_report\.PDF$`, storedName)

	files, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, storedName, files[0].StoredName)
}

func TestAttachmentRepository_SaveSanitizes(t *testing.T) {
	repo := newTestAttachmentRepository(afero.NewMemMapFs())
	ctx := context.Background()

	storedName, err := repo.Save(ctx, "../../etc/My Résumé.docx", strings.NewReader("doc"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(storedName, "_etc_My_Resume.docx"), storedName)
	assert.NotContains(t, storedName, "/")

	_, err = repo.Save(ctx, "東京.pdf", strings.NewReader("x"))
	require.NoError(t, err)
}

func TestAttachmentRepository_Resolve(t *testing.T) {
	repo := newTestAttachmentRepository(afero.NewMemMapFs())
	ctx := context.Background()

	storedName, err := repo.Save(ctx, "invoice.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)

	file, err := repo.Resolve(ctx, storedName)
	require.NoError(t, err)
	assert.Equal(t, storedName, file.StoredName)
	assert.Equal(t, "invoice.pdf", file.DisplayName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, int64(8), file.Size)

	for _, name := range []string{"", "../emails.json", "a/../../b", "/etc/passwd", `\windows`} {
		_, err = repo.Resolve(ctx, name)
		assert.ErrorIs(t, err, er.ErrInvalidFilename, name)
	}

	_, err = repo.Resolve(ctx, "20240101000000000000deadbeef_missing.pdf")
	assert.ErrorIs(t, err, er.ErrAttachmentNotFound)
	assert.True(t, er.IsNotFound(err))
}

func TestAttachmentRepository_OpenAndRead(t *testing.T) {
	repo := newTestAttachmentRepository(afero.NewMemMapFs())
	ctx := context.Background()

	storedName, err := repo.Save(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	reader, err := repo.Open(ctx, storedName)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "hello", string(content))

	content, err = repo.Read(ctx, storedName)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = repo.Read(ctx, "nope.txt")
	assert.ErrorIs(t, err, er.ErrAttachmentNotFound)

	_, err = repo.Open(ctx, "../emails.json")
	assert.ErrorIs(t, err, er.ErrInvalidFilename)
}

func TestAttachmentRepository_Delete(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newTestAttachmentRepository(fs)
	ctx := context.Background()

	first, err := repo.Save(ctx, "a.png", strings.NewReader("png"))
	require.NoError(t, err)
	second, err := repo.Save(ctx, "b.csv", strings.NewReader("a,b"))
	require.NoError(t, err)

	repo.DeleteMany(ctx, []string{first, second, "already-gone.pdf", "../emails.json"})

	files, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = repo.Resolve(ctx, first)
	assert.ErrorIs(t, err, er.ErrAttachmentNotFound)
}

func TestAttachmentRepository_Mirror(t *testing.T) {
	mirror := &mockStorageService{}
	mirror.On("Upload", mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "attachments/") }), "%PDF", "application/pdf").
		Return(errors.New("bucket unavailable"))
	mirror.On("Delete", mock.Anything).Return(nil)

	repo := NewAttachmentRepository(afero.NewMemMapFs(), testAttachmentsDir, mirror, logger.NewNopLogger())
	ctx := context.Background()

	storedName, err := repo.Save(ctx, "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err, "mirror failures must not fail the save")

	repo.Delete(ctx, storedName)
	mirror.AssertCalled(t, "Delete", "attachments/"+storedName)
	mirror.AssertExpectations(t)
}

func TestAttachmentRepository_ListMissingDir(t *testing.T) {
	repo := NewAttachmentRepository(afero.NewMemMapFs(), "/nowhere", nil, logger.NewNopLogger())

	files, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsAllowedExtension(t *testing.T) {
	assert.True(t, IsAllowedExtension("a.JPEG"))
	assert.True(t, IsAllowedExtension("deck.pptx"))
	assert.False(t, IsAllowedExtension("script.sh"))
	assert.False(t, IsAllowedExtension("noext"))
}
