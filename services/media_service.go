package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxUploadSize = 10 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ObjectStore is the blob backend behind media uploads.
type ObjectStore interface {
	Bucket() string
	Upload(ctx context.Context, path, contentType string, body io.Reader) error
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type MediaService struct {
	repo   *repository.Repository[models.MediaFile]
	store  ObjectStore
	clock  Clock
	logger *zap.Logger
}

func NewMediaService(db *gorm.DB, store ObjectStore, clock Clock, log *zap.Logger) *MediaService {
	if clock == nil {
		clock = SystemClock
	}
	return &MediaService{
		repo:   repository.NewMediaRepository(db),
		store:  store,
		clock:  clock,
		logger: logger.OrNop(log),
	}
}

// Upload stores the object and records it. The content type is sniffed when
// the client did not send one.
func (s *MediaService) Upload(ctx context.Context, uploader uuid.UUID, filename, contentType string, r io.Reader) (*models.MediaFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errs.Validation("File is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, errs.Validation("File exceeds the %d MB limit", MaxUploadSize>>20)
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = strings.Split(http.DetectContentType(data), ";")[0]
	}
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, errs.Validation("Unsupported file type: %s", contentType)
	}

	now := s.clock.Now()
	path := fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), ext)
	if err := s.store.Upload(ctx, path, contentType, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	file := &models.MediaFile{
		Bucket:      s.store.Bucket(),
		Path:        path,
		URL:         s.store.PublicURL(path),
		FileName:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedBy:  uploader,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		if derr := s.store.Delete(ctx, path); derr != nil {
			s.logger.Warn("failed to remove orphaned object", zap.String("path", path), zap.Error(derr))
		}
		return nil, err
	}
	s.logger.Info("media uploaded",
		zap.String("media_id", file.ID.String()),
		zap.String("content_type", contentType),
		zap.Int64("size", file.Size),
	)
	return file, nil
}

func (s *MediaService) Get(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return s.repo.Get(ctx, id)
}

func (s *MediaService) List(ctx context.Context, skip, limit int) ([]models.MediaFile, error) {
	return s.repo.List(ctx, skip, limit)
}

// Delete soft-deletes the record, then removes the object. A failure to
// remove the object is only logged.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, file); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.Path); err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("path", file.Path), zap.Error(err))
	}
	return nil
}
