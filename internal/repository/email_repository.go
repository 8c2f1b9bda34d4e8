package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/models"
	"github.com/customeros/maildesk/internal/tracing"
)

const tempFileSuffix = ".tmp"

// EmailRepository keeps the whole collection in one JSON file. Every write replaces
// the file atomically, and all mutations go through a single in-process lock.
type EmailRepository struct {
	fs   afero.Fs
	path string
	log  logger.Logger
	mu   sync.Mutex
}

func NewEmailRepository(fs afero.Fs, path string, log logger.Logger) *EmailRepository {
	return &EmailRepository{
		fs:   fs,
		path: path,
		log:  log,
	}
}

func (r *EmailRepository) Path() string {
	return r.path
}

// Init creates the data file with an empty collection if it does not exist yet.
func (r *EmailRepository) Init(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailRepository.Init")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)

	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := afero.Exists(r.fs, r.path)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(er.ErrPersistence, err.Error())
	}
	if exists {
		return nil
	}

	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrapf(er.ErrPersistence, "create data directory: %v", err)
		}
	}

	return r.save(ctx, models.Emails{})
}

// Load reads the collection. A missing, unreadable or malformed file yields an
// empty collection; only the last two are logged. Records that do not decode are
// logged and skipped so the rest survive the next save.
func (r *EmailRepository) Load(ctx context.Context) models.Emails {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailRepository.Load")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)

	emails := r.load(ctx)
	span.LogKV("result.count", len(emails))
	return emails
}

// Save replaces the data file with emails.
func (r *EmailRepository) Save(ctx context.Context, emails models.Emails) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailRepository.Save")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.save(ctx, emails); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// View loads the collection under the store lock and hands it to fn.
func (r *EmailRepository) View(ctx context.Context, fn func(emails models.Emails) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailRepository.View")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)

	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(r.load(ctx))
}

// Mutate runs one load-modify-save cycle under the store lock. fn returns the
// collection to persist and whether it changed; nothing is written when it did not,
// or when fn fails.
func (r *EmailRepository) Mutate(ctx context.Context, fn func(emails models.Emails) (models.Emails, bool, error)) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailRepository.Mutate")
	defer span.Finish()
	tracing.SetDefaultFileRepositorySpanTags(ctx, span)

	r.mu.Lock()
	defer r.mu.Unlock()

	updated, changed, err := fn(r.load(ctx))
	if err != nil {
		return err
	}
	span.LogKV("changed", changed)
	if !changed {
		return nil
	}

	if err = r.save(ctx, updated); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *EmailRepository) load(ctx context.Context) models.Emails {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Errorf("Failed to read data file %s: %v", r.path, err)
		}
		return models.Emails{}
	}

	var elements []json.RawMessage
	if err = json.Unmarshal(data, &elements); err != nil {
		r.log.Errorf("Data file %s is not a valid email collection, starting empty: %v", r.path, err)
		return models.Emails{}
	}

	emails := make(models.Emails, 0, len(elements))
	for i, element := range elements {
		var email *models.Email
		if err = json.Unmarshal(element, &email); err != nil || email == nil {
			r.log.Errorf("Skipping malformed record %d in %s: %v", i, r.path, err)
			continue
		}
		email.Normalize()
		emails = append(emails, *email)
	}
	return emails
}

func (r *EmailRepository) save(ctx context.Context, emails models.Emails) error {
	if emails == nil {
		emails = models.Emails{}
	}

	data, err := json.MarshalIndent(emails, "", "    ")
	if err != nil {
		return errors.Wrapf(er.ErrPersistence, "marshal emails: %v", err)
	}

	tmpPath := r.path + tempFileSuffix
	if err = r.writeSynced(tmpPath, data); err != nil {
		r.removeTemp(tmpPath)
		return errors.Wrapf(er.ErrPersistence, "write %s: %v", tmpPath, err)
	}

	if err = r.fs.Rename(tmpPath, r.path); err != nil {
		r.removeTemp(tmpPath)
		return errors.Wrapf(er.ErrPersistence, "replace %s: %v", r.path, err)
	}

	return nil
}

// writeSynced writes data and flushes it to stable storage before returning.
func (r *EmailRepository) writeSynced(path string, data []byte) error {
	file, err := r.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err = file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (r *EmailRepository) removeTemp(tmpPath string) {
	if err := r.fs.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		r.log.Warnf("Failed to remove temp file %s: %v", tmpPath, err)
	}
}
