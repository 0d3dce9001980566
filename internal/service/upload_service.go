package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/facility-ops-api/internal/observability"
)

// FileStorage abstracts photo destinations.
type FileStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) (string, error)
}

// photoIntake validates image uploads and hands them to storage.
type photoIntake struct {
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

func newPhotoIntake(storage FileStorage, maxSizeMB int, logger zerolog.Logger) *photoIntake {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &photoIntake{
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger,
		tracer:  observability.Tracer("upload"),
	}
}

// read loads and sniffs a file. Only images are accepted.
func (p *photoIntake) read(file *multipart.FileHeader) ([]byte, string, error) {
	if file == nil {
		return nil, "", ErrPhotoRequired
	}
	if file.Size > p.maxSize {
		return nil, "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, p.maxSize+1)); err != nil {
		return nil, "", err
	}
	if int64(buf.Len()) > p.maxSize {
		return nil, "", ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, detected.String())
	}
	return buf.Bytes(), detected.Extension(), nil
}

// store validates every file before uploading any of them.
func (p *photoIntake) store(ctx context.Context, prefix string, files []*multipart.FileHeader) ([]string, error) {
	if p.storage == nil {
		return nil, ErrPhotoStorageUnavailable
	}

	ctx, span := p.tracer.Start(ctx, "photos.store", trace.WithAttributes(
		attribute.Int("upload.count", len(files)),
		attribute.Int64("upload.max_bytes", p.maxSize),
	))
	defer span.End()

	type pending struct {
		name    string
		payload []byte
	}
	batch := make([]pending, 0, len(files))
	for _, file := range files {
		payload, ext, err := p.read(file)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation failed")
			return nil, err
		}
		batch = append(batch, pending{name: sanitizeFileName(file.Filename, ext), payload: payload})
	}

	urls := make([]string, 0, len(batch))
	for _, item := range batch {
		url, err := p.storage.Upload(ctx, prefix+"/"+item.name, bytes.NewReader(item.payload))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage failed")
			return nil, err
		}
		urls = append(urls, url)
	}

	span.SetStatus(codes.Ok, "stored")
	p.logger.Info().Int("count", len(urls)).Str("prefix", prefix).Msg("photos stored")
	return urls, nil
}

func sanitizeFileName(name, detectedExt string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("photo-%d", time.Now().Unix())
	}
	ext := detectedExt
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(name))
	}
	return base + ext
}
