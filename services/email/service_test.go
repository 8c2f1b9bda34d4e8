package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/maildesk/dto"
	"github.com/customeros/maildesk/interfaces"
	"github.com/customeros/maildesk/internal/enum"
	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/internal/utils"
)

const (
	testDataFile       = "/data/emails.json"
	testAttachmentsDir = "/data/attachments"
	testSender         = "desk@example.com"
)

type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) Send(ctx context.Context, message *interfaces.OutgoingMessage) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockMailSender) DefaultSender() string {
	return testSender
}

type recordingPublisher struct {
	events []enum.EmailEventType
}

func (p *recordingPublisher) PublishEmailEvent(ctx context.Context, entityId string, eventType enum.EmailEventType, message interface{}) error {
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

type testEnv struct {
	fs        afero.Fs
	repos     *repository.Repositories
	sender    *mockMailSender
	publisher *recordingPublisher
	service   interfaces.EmailService
}

// readOnlyDataFs lets attachment writes through but fails replacing the data file.
type readOnlyDataFs struct {
	afero.Fs
}

func (f *readOnlyDataFs) Rename(oldname, newname string) error {
	return errors.New("read-only file system")
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOnFs(t, afero.NewMemMapFs())
}

func newTestEnvOnFs(t *testing.T, fs afero.Fs) *testEnv {
	t.Helper()
	log := logger.NewNopLogger()
	repos := repository.InitRepositories(fs, testDataFile, testAttachmentsDir, nil, log)
	require.NoError(t, repos.Init(context.Background()))

	sender := &mockMailSender{}
	publisher := &recordingPublisher{}
	return &testEnv{
		fs:        fs,
		repos:     repos,
		sender:    sender,
		publisher: publisher,
		service:   NewEmailService(repos, sender, publisher, log),
	}
}

func (e *testEnv) seed(t *testing.T, emails ...models.Email) {
	t.Helper()
	require.NoError(t, e.repos.EmailRepository.Save(context.Background(), emails))
}

func (e *testEnv) dataFile(t *testing.T) string {
	t.Helper()
	content, err := afero.ReadFile(e.fs, testDataFile)
	require.NoError(t, err)
	return string(content)
}

func validInput() dto.CreateEmailInput {
	return dto.CreateEmailInput{From: "a@x.com", To: "b@x.com", Subject: "Hi", Body: "Hello"}
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	before := utils.Now()
	email, err := env.service.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, email.ID)
	assert.Equal(t, enum.FolderInbox, email.Folder)
	assert.False(t, email.Read)
	assert.False(t, email.Starred)
	assert.False(t, email.Date.Before(before.Truncate(time.Microsecond)))
	assert.Equal(t, []string{}, email.Attachments)

	stored := env.repos.EmailRepository.Load(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, email.ID, stored[0].ID)
	assert.Equal(t, []enum.EmailEventType{enum.EmailEventCreated}, env.publisher.events)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Create(ctx, dto.CreateEmailInput{To: "b@x.com", Body: "Hello"}, nil)
	require.Error(t, err)
	assert.True(t, er.IsInvalidInput(err))
	assert.Equal(t, "Missing fields: from, subject", err.Error())

	input := validInput()
	input.Folder = "spam"
	_, err = env.service.Create(ctx, input, nil)
	assert.ErrorIs(t, err, er.ErrInvalidFolder)

	assert.Empty(t, env.repos.EmailRepository.Load(ctx))
}

func TestCreate_WithUploads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validInput()
	input.Folder = enum.FolderDrafts
	input.Starred = true
	email, err := env.service.Create(ctx, input, []models.Upload{
		{Filename: "report.pdf", Content: strings.NewReader("%PDF")},
		{Filename: "virus.exe", Content: strings.NewReader("MZ")},
		{Filename: "", Content: strings.NewReader("ignored")},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.FolderDrafts, email.Folder)
	assert.True(t, email.Starred)
	require.Len(t, email.Attachments, 1)
	assert.True(t, strings.HasSuffix(email.Attachments[0], "_report.pdf"))

	files, err := env.repos.AttachmentRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCreate_PersistenceFailureRemovesUploads(t *testing.T) {
	base := afero.NewMemMapFs()
	newTestEnvOnFs(t, base)
	env := newTestEnvOnFs(t, &readOnlyDataFs{Fs: base})
	ctx := context.Background()

	_, err := env.service.Create(ctx, validInput(), []models.Upload{
		{Filename: "report.pdf", Content: strings.NewReader("%PDF")},
	})
	require.Error(t, err)
	assert.Equal(t, er.KindPersistence, er.Kind(err))

	files, err := env.repos.AttachmentRepository.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGet_MarksRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, models.Email{ID: "id1", Folder: enum.FolderInbox})

	email, err := env.service.Get(ctx, "id1")
	require.NoError(t, err)
	assert.True(t, email.Read)
	assert.True(t, env.repos.EmailRepository.Load(ctx)[0].Read)

	_, err = env.service.Get(ctx, "missing")
	assert.ErrorIs(t, err, er.ErrEmailNotFound)
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, models.Email{ID: "id1", Subject: "keep", Folder: enum.FolderInbox})

	trash := enum.FolderTrash
	starred := true
	email, err := env.service.Update(ctx, "id1", models.EmailPatch{Folder: &trash, Starred: &starred})
	require.NoError(t, err)
	assert.Equal(t, enum.FolderTrash, email.Folder)
	assert.True(t, email.Starred)
	assert.Equal(t, "keep", email.Subject)

	spam := enum.Folder("spam")
	_, err = env.service.Update(ctx, "id1", models.EmailPatch{Folder: &spam})
	assert.ErrorIs(t, err, er.ErrInvalidFolder)

	_, err = env.service.Update(ctx, "missing", models.EmailPatch{Starred: &starred})
	assert.ErrorIs(t, err, er.ErrEmailNotFound)
}

func TestDelete_RemovesAttachments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	email, err := env.service.Create(ctx, validInput(), []models.Upload{
		{Filename: "one.pdf", Content: strings.NewReader("1")},
		{Filename: "two.png", Content: strings.NewReader("2")},
	})
	require.NoError(t, err)
	require.Len(t, email.Attachments, 2)

	require.NoError(t, env.service.Delete(ctx, email.ID))

	assert.Empty(t, env.repos.EmailRepository.Load(ctx))
	for _, name := range email.Attachments {
		_, err = env.repos.AttachmentRepository.Resolve(ctx, name)
		assert.ErrorIs(t, err, er.ErrAttachmentNotFound)
	}

	assert.ErrorIs(t, env.service.Delete(ctx, email.ID), er.ErrEmailNotFound)
}

func TestDeleteMany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t,
		models.Email{ID: "id1", Folder: enum.FolderInbox},
		models.Email{ID: "id2", Folder: enum.FolderInbox},
		models.Email{ID: "id3", Folder: enum.FolderSent},
	)

	count, err := env.service.DeleteMany(ctx, []string{"id1", "id3", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	remaining := env.repos.EmailRepository.Load(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, "id2", remaining[0].ID)

	count, err = env.service.DeleteMany(ctx, []string{"unknown"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleStar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, models.Email{ID: "id1", Folder: enum.FolderInbox})

	starred, err := env.service.ToggleStar(ctx, "id1")
	require.NoError(t, err)
	assert.True(t, starred)

	starred, err = env.service.ToggleStar(ctx, "id1")
	require.NoError(t, err)
	assert.False(t, starred)

	_, err = env.service.ToggleStar(ctx, "missing")
	assert.ErrorIs(t, err, er.ErrEmailNotFound)
}

func TestMarkRead_CountsOnlyUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t,
		models.Email{ID: "id1", Folder: enum.FolderInbox, Read: true},
		models.Email{ID: "id2", Folder: enum.FolderInbox},
	)

	count, err := env.service.MarkRead(ctx, []string{"id1", "id2"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := env.repos.EmailRepository.Load(ctx)
	assert.True(t, stored[0].Read)
	assert.True(t, stored[1].Read)
}

func TestMoveToFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t,
		models.Email{ID: "id1", Folder: enum.FolderInbox},
		models.Email{ID: "id2", Folder: enum.FolderTrash},
	)

	count, err := env.service.MoveToFolder(ctx, []string{"id1", "id2"}, enum.FolderTrash)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = env.service.MoveToFolder(ctx, []string{"id1", "id2"}, enum.FolderTrash)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMoveToFolder_InvalidFolderLeavesFileUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, models.Email{ID: "id1", Folder: enum.FolderInbox})
	before := env.dataFile(t)

	_, err := env.service.MoveToFolder(ctx, []string{"id1"}, "spam")
	require.Error(t, err)
	assert.True(t, er.IsInvalidInput(err))
	assert.Equal(t, before, env.dataFile(t))
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t,
		models.Email{ID: "id1", Folder: enum.FolderInbox},
		models.Email{ID: "id2", Folder: enum.FolderSent},
		models.Email{ID: "id3", Folder: enum.FolderInbox},
	)

	all, err := env.service.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inbox := enum.FolderInbox
	filtered, err := env.service.List(ctx, &inbox)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "id1", filtered[0].ID)
	assert.Equal(t, "id3", filtered[1].ID)

	spam := enum.Folder("spam")
	_, err = env.service.List(ctx, &spam)
	assert.ErrorIs(t, err, er.ErrInvalidFolder)
}

func TestSend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.sender.On("Send", mock.Anything, mock.MatchedBy(func(m *interfaces.OutgoingMessage) bool {
		return m.From == testSender && m.To == "bob@example.org" &&
			len(m.Attachments) == 1 && m.Attachments[0].Filename == "report.pdf" &&
			m.Attachments[0].ContentType == "application/pdf"
	})).Return(nil)

	email, err := env.service.Send(ctx, dto.SendEmailInput{To: "bob@example.org", Subject: "Report", Body: "Attached"},
		[]models.Upload{{Filename: "report.pdf", Content: strings.NewReader("%PDF")}})
	require.NoError(t, err)

	assert.Equal(t, enum.FolderSent, email.Folder)
	assert.True(t, email.Read)
	assert.Equal(t, testSender, email.From)
	require.Len(t, email.Attachments, 1)

	stored := env.repos.EmailRepository.Load(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, email.ID, stored[0].ID)
	env.sender.AssertExpectations(t)
	assert.Equal(t, []enum.EmailEventType{enum.EmailEventSent}, env.publisher.events)
}

func TestSend_ToSelfAddsInboxCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	email, err := env.service.Send(ctx, dto.SendEmailInput{To: testSender, Subject: "Note", Body: "to self"},
		[]models.Upload{{Filename: "notes.txt", Content: strings.NewReader("n")}})
	require.NoError(t, err)

	stored := env.repos.EmailRepository.Load(ctx)
	require.Len(t, stored, 2)
	sent, inbox := stored[0], stored[1]

	assert.Equal(t, email.ID, sent.ID)
	assert.Equal(t, enum.FolderSent, sent.Folder)
	assert.True(t, sent.Read)

	assert.NotEqual(t, sent.ID, inbox.ID)
	assert.Equal(t, enum.FolderInbox, inbox.Folder)
	assert.False(t, inbox.Read)
	assert.Equal(t, sent.Subject, inbox.Subject)
	require.Len(t, inbox.Attachments, 1)
	assert.NotEqual(t, sent.Attachments[0], inbox.Attachments[0])

	require.NoError(t, env.service.Delete(ctx, inbox.ID))
	_, err = env.repos.AttachmentRepository.Resolve(ctx, sent.Attachments[0])
	assert.NoError(t, err, "the sent copy keeps its attachment")
}

func TestSend_Failures(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Send(context.Background(), dto.SendEmailInput{To: "bob@example.org"}, nil)
		assert.True(t, er.IsInvalidInput(err))
		env.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Send(context.Background(), dto.SendEmailInput{To: "not-an-address", Subject: "s", Body: "b"}, nil)
		assert.True(t, er.IsInvalidInput(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		env.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		_, err := env.service.Send(ctx, dto.SendEmailInput{To: "bob@example.org", Subject: "s", Body: "b"},
			[]models.Upload{{Filename: "a.pdf", Content: strings.NewReader("%PDF")}})
		require.Error(t, err)
		assert.Equal(t, er.KindTransport, er.Kind(err))

		assert.Empty(t, env.repos.EmailRepository.Load(ctx))
		files, err := env.repos.AttachmentRepository.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, files, "uploads of an unsent message are removed")
	})
}

func TestSend_PersistenceFailureRemovesAttachments(t *testing.T) {
	base := afero.NewMemMapFs()
	newTestEnvOnFs(t, base)
	env := newTestEnvOnFs(t, &readOnlyDataFs{Fs: base})
	ctx := context.Background()
	env.sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	_, err := env.service.Send(ctx, dto.SendEmailInput{To: testSender, Subject: "Note", Body: "to self"},
		[]models.Upload{{Filename: "notes.txt", Content: strings.NewReader("n")}})
	require.Error(t, err)
	assert.Equal(t, er.KindPersistence, er.Kind(err))

	files, err := env.repos.AttachmentRepository.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files, "both the sent blob and the inbox copy are removed")
}

func TestSweepOrphanAttachments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	email, err := env.service.Create(ctx, validInput(), []models.Upload{{Filename: "kept.pdf", Content: strings.NewReader("k")}})
	require.NoError(t, err)
	orphan, err := env.repos.AttachmentRepository.Save(ctx, "orphan.pdf", strings.NewReader("o"))
	require.NoError(t, err)

	fresh := NewAttachmentSweeper(env.repos, time.Hour, logger.NewNopLogger())
	count, err := fresh.SweepOrphanAttachments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "blobs inside the grace period are kept")

	sweeper := NewAttachmentSweeper(env.repos, -time.Minute, logger.NewNopLogger())
	count, err = sweeper.SweepOrphanAttachments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.repos.AttachmentRepository.Resolve(ctx, orphan)
	assert.ErrorIs(t, err, er.ErrAttachmentNotFound)
	_, err = env.repos.AttachmentRepository.Resolve(ctx, email.Attachments[0])
	assert.NoError(t, err)
}
