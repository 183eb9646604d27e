package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dataurl"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/blobstore"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
)

var errImageNotFound = common.WithMessage(common.ErrorNotFound, "Image not found")

// UploadResult describes a stored upload.
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// ImageService stores images either inline as data URLs in the images table
// or, when a blob store is configured, as objects under images/<filename>
// with only the metadata kept in the table.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	maxBytes    int64
	logger      logging.Logger
}

// NewImageService builds the service. blobs may be nil, in which case the
// bytes stay in the database.
func NewImageService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *ImageService {
	return &ImageService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		maxBytes:    cfg.MaxImageBytes,
		logger:      logger.With("module", "images"),
	}
}

// NewImageFilename returns "event-<uuid>.<ext>" using the extension of the
// uploaded name, or jpg when it has none.
func NewImageFilename(originalName string) string {
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("event-%s.%s", uuid.NewString(), ext)
}

// Upload validates and stores a multipart upload under a fresh filename.
func (s *ImageService) Upload(ctx context.Context, originalName, mimeType string, data []byte) (*UploadResult, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, validationError("Only image files are allowed")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, validationError(fmt.Sprintf("Image exceeds the %d byte limit", s.maxBytes))
	}

	filename := NewImageFilename(originalName)
	img, err := s.Save(ctx, filename, mimeType, data)
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		Filename:     img.Filename,
		OriginalName: originalName,
		MimeType:     img.MimeType,
		Size:         img.Size,
	}, nil
}

// Save stores data under filename, replacing any earlier image with the
// same name.
func (s *ImageService) Save(ctx context.Context, filename, mimeType string, data []byte) (*models.Image, error) {
	img := &models.Image{
		Filename: filename,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}

	if s.blobs != nil {
		key := "images/" + filename
		if err := s.blobs.Put(ctx, key, data, mimeType); err != nil {
			return nil, internalErr("store image", err)
		}
		img.StorageKey = &key
	} else {
		img.Data = dataurl.Encode(mimeType, data)
	}

	saved, err := s.repomanager.Images(s.db).Save(ctx, img)
	if err != nil {
		return nil, internalErr("save image", err)
	}
	return saved, nil
}

// SaveDataURL stores an image given in data URL form, as found in export
// documents.
func (s *ImageService) SaveDataURL(ctx context.Context, filename, url string) (*models.Image, error) {
	mimeType, data, err := dataurl.Decode(url)
	if err != nil {
		return nil, validationError("Invalid image data format")
	}
	return s.Save(ctx, filename, mimeType, data)
}

func (s *ImageService) Info(ctx context.Context, filename string) (*models.Image, error) {
	img, err := s.repomanager.Images(s.db).Get(ctx, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errImageNotFound
		}
		return nil, internalErr("get image", err)
	}
	return img, nil
}

// Load returns the raw bytes and MIME type of an image.
func (s *ImageService) Load(ctx context.Context, filename string) ([]byte, string, error) {
	img, err := s.Info(ctx, filename)
	if err != nil {
		return nil, "", err
	}
	return s.read(ctx, img)
}

func (s *ImageService) read(ctx context.Context, img *models.Image) ([]byte, string, error) {
	if img.StorageKey == nil {
		mimeType, data, err := dataurl.Decode(img.Data)
		if err != nil {
			return nil, "", common.WithMessage(common.ErrorInternal, "Invalid image data format")
		}
		return data, mimeType, nil
	}

	if s.blobs == nil {
		return nil, "", internalErr("load image", errors.New("blob storage is not configured"))
	}
	data, err := s.blobs.Get(ctx, *img.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", errImageNotFound
		}
		return nil, "", internalErr("load image", err)
	}
	return data, img.MimeType, nil
}

// DataURL returns the image in data URL form.
func (s *ImageService) DataURL(ctx context.Context, filename string) (string, error) {
	img, err := s.Info(ctx, filename)
	if err != nil {
		return "", err
	}
	if img.StorageKey == nil {
		return img.Data, nil
	}
	data, mimeType, err := s.read(ctx, img)
	if err != nil {
		return "", err
	}
	return dataurl.Encode(mimeType, data), nil
}

// Delete removes the image row and, for blob-backed images, the object.
// A failed object delete is logged; the row is already gone by then.
func (s *ImageService) Delete(ctx context.Context, filename string) error {
	img, err := s.repomanager.Images(s.db).Delete(ctx, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errImageNotFound
		}
		return internalErr("delete image", err)
	}

	if img.StorageKey != nil && s.blobs != nil {
		if err := s.blobs.Delete(ctx, *img.StorageKey); err != nil {
			s.logger.Warn(ctx, "failed to delete image object", "key", *img.StorageKey, "error", err)
		}
	}
	return nil
}
