package repository

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/customeros/maildesk/interfaces"
	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

const mirrorKeyPrefix = "attachments/"

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"csv":  {},
	"xlsx": {},
	"pptx": {},
}

func IsAllowedExtension(filename string) bool {
	_, ok := allowedExtensions[utils.FileExtension(filename)]
	return ok
}

// AttachmentRepository stores attachment blobs in one flat directory. Blob names are
// "<id>_<sanitized original name>", so they never collide and never leave the directory.
type AttachmentRepository struct {
	fs     afero.Fs
	dir    string
	mirror interfaces.StorageService
	log    logger.Logger
}

// NewAttachmentRepository creates the repository. mirror may be nil.
func NewAttachmentRepository(fs afero.Fs, dir string, mirror interfaces.StorageService, log logger.Logger) *AttachmentRepository {
	return &AttachmentRepository{
		fs:     fs,
		dir:    dir,
		mirror: mirror,
		log:    log,
	}
}

func (r *AttachmentRepository) Dir() string {
	return r.dir
}

func (r *AttachmentRepository) Init(ctx context.Context) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.Init")
	defer span.Finish()
	tracing.TagComponentFileRepository(span)

	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(er.ErrPersistence, "create attachments directory: %v", err)
	}
	return nil
}

// Save validates and writes one blob and returns its stored name.
func (r *AttachmentRepository) Save(ctx context.Context, fileName string, content io.Reader) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.Save")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)
	span.LogKV("fileName", fileName)

	ext := utils.FileExtension(fileName)
	if ext == "" {
		return "", errors.Wrap(er.ErrMissingExtension, fileName)
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", errors.Wrap(er.ErrExtensionNotAllowed, fileName)
	}

	safeName := utils.SanitizeFilename(fileName)
	if safeName == "" {
		return "", errors.Wrap(er.ErrUnsafeFilename, fileName)
	}
	storedName := utils.GenerateID() + "_" + safeName

	data, err := io.ReadAll(content)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrapf(er.ErrPersistence, "read upload %s: %v", fileName, err)
	}

	fullPath := r.fullPath(storedName)
	if err = afero.WriteFile(r.fs, fullPath, data, 0o644); err != nil {
		tracing.TraceErr(span, err)
		_ = r.fs.Remove(fullPath)
		return "", errors.Wrapf(er.ErrPersistence, "write attachment %s: %v", storedName, err)
	}

	if r.mirror != nil {
		if err = r.mirror.Upload(ctx, mirrorKeyPrefix+storedName, data, utils.ContentTypeForExtension(ext)); err != nil {
			tracing.TraceErr(span, err)
			r.log.Warnf("Failed to mirror attachment %s: %v", storedName, err)
		}
	}

	span.LogKV("storedName", storedName)
	return storedName, nil
}

// Delete removes a blob. Missing blobs are ignored and failures are only logged.
func (r *AttachmentRepository) Delete(ctx context.Context, storedName string) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.Delete")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)
	span.LogKV("storedName", storedName)

	if !isFlatName(storedName) {
		r.log.Warnf("Refusing to delete attachment with unsafe name %q", storedName)
		return
	}

	if err := r.fs.Remove(r.fullPath(storedName)); err != nil && !os.IsNotExist(err) {
		tracing.TraceErr(span, err)
		r.log.Warnf("Failed to delete attachment %s: %v", storedName, err)
	}

	if r.mirror != nil {
		if err := r.mirror.Delete(ctx, mirrorKeyPrefix+storedName); err != nil {
			r.log.Warnf("Failed to delete mirrored attachment %s: %v", storedName, err)
		}
	}
}

func (r *AttachmentRepository) DeleteMany(ctx context.Context, storedNames []string) {
	for _, name := range storedNames {
		r.Delete(ctx, name)
	}
}

// Resolve maps a name taken from a request to an existing blob.
func (r *AttachmentRepository) Resolve(ctx context.Context, rawName string) (*models.AttachmentFile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.Resolve")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)
	span.LogKV("rawName", rawName)

	if rawName == "" || strings.Contains(rawName, "..") || strings.HasPrefix(rawName, "/") || strings.HasPrefix(rawName, "\\") {
		return nil, errors.Wrap(er.ErrInvalidFilename, rawName)
	}

	storedName := utils.SanitizeFilename(rawName)
	if storedName == "" {
		return nil, errors.Wrap(er.ErrInvalidFilename, rawName)
	}

	info, err := r.fs.Stat(r.fullPath(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(er.ErrAttachmentNotFound, storedName)
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(er.ErrPersistence, "stat attachment %s: %v", storedName, err)
	}
	if info.IsDir() {
		return nil, errors.Wrap(er.ErrAttachmentNotFound, storedName)
	}

	return toAttachmentFile(info), nil
}

// Open returns a reader over the blob content. The caller closes it.
func (r *AttachmentRepository) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.Open")
	defer span.Finish()
	tracing.TagComponentFileRepository(span)

	if !isFlatName(storedName) {
		return nil, errors.Wrap(er.ErrInvalidFilename, storedName)
	}

	f, err := r.fs.Open(r.fullPath(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(er.ErrAttachmentNotFound, storedName)
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(er.ErrPersistence, "open attachment %s: %v", storedName, err)
	}
	return f, nil
}

func (r *AttachmentRepository) Read(ctx context.Context, storedName string) ([]byte, error) {
	f, err := r.Open(ctx, storedName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, f); err != nil {
		return nil, errors.Wrapf(er.ErrPersistence, "read attachment %s: %v", storedName, err)
	}
	return buf.Bytes(), nil
}

// List returns every blob in the directory ordered by name.
func (r *AttachmentRepository) List(ctx context.Context) ([]models.AttachmentFile, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "AttachmentRepository.List")
	defer span.Finish()
	tracing.TagComponentFileRepository(span)

	infos, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.AttachmentFile{}, nil
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(er.ErrPersistence, "list attachments: %v", err)
	}

	files := make([]models.AttachmentFile, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files = append(files, *toAttachmentFile(info))
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].StoredName < files[j].StoredName
	})

	span.LogKV("result.count", len(files))
	return files, nil
}

func (r *AttachmentRepository) fullPath(storedName string) string {
	return filepath.Join(r.dir, storedName)
}

func isFlatName(name string) bool {
	return name != "" && name != "." && !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`)
}

func toAttachmentFile(info os.FileInfo) *models.AttachmentFile {
	return &models.AttachmentFile{
		StoredName:  info.Name(),
		DisplayName: utils.DisplayName(info.Name()),
		ContentType: utils.ContentTypeForFilename(info.Name()),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}
}
