package cloudinary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cldsdk "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
)

// SignedUploader uploads with API credentials through the Cloudinary SDK.
type SignedUploader struct {
	cld     *cldsdk.Cloudinary
	folder  string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSignedUploader creates an uploader that stores images under folder.
func NewSignedUploader(cloudName, apiKey, apiSecret, folder string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*SignedUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary: cloud name, API key and secret are required: %w", domain.ErrNotConfigured)
	}
	cld, err := newClient(cloudName, apiKey, apiSecret, timeout)
	if err != nil {
		return nil, err
	}
	return &SignedUploader{cld: cld, folder: folder, metrics: metrics, logger: logger}, nil
}

// UploadImages uploads files in order and stops at the first failure.
func (u *SignedUploader) UploadImages(ctx context.Context, files []domain.ImageFile) ([]domain.StoredImage, error) {
	if len(files) == 0 {
		return []domain.StoredImage{}, nil
	}
	return uploadAll(ctx, files, u.metrics, u.uploadOne)
}

func (u *SignedUploader) uploadOne(ctx context.Context, f domain.ImageFile) (domain.StoredImage, error) {
	unique := true
	overwrite := false
	params := uploader.UploadParams{
		Folder:         u.folder,
		ResourceType:   "image",
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
	}

	img, err := storedImage(u.cld.Upload.Upload(ctx, f.Content, params))
	if err != nil {
		return domain.StoredImage{}, err
	}
	u.logger.Debug("image uploaded", "filename", f.Filename, "public_id", img.PublicID)
	return img, nil
}
