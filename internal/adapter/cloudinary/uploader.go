// Package cloudinary uploads peak images to Cloudinary, either unsigned through
// an upload preset or signed with API credentials.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cldsdk "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
)

// uploadFunc uploads a single image.
type uploadFunc func(ctx context.Context, f domain.ImageFile) (domain.StoredImage, error)

// uploadAll uploads files one at a time and stops at the first failure.
// Images already uploaded before the failure are not reported.
func uploadAll(ctx context.Context, files []domain.ImageFile, metrics *observability.Metrics, single uploadFunc) ([]domain.StoredImage, error) {
	results := make([]domain.StoredImage, 0, len(files))
	for i, f := range files {
		start := time.Now()
		img, err := single(ctx, f)
		if metrics != nil {
			metrics.ImageUploadDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if metrics != nil {
				metrics.ImageUploads.WithLabelValues("error").Inc()
			}
			return nil, fmt.Errorf("upload image %d (%s): %w", i+1, f.Filename, err)
		}
		if metrics != nil {
			metrics.ImageUploads.WithLabelValues("success").Inc()
		}
		results = append(results, img)
	}
	return results, nil
}

// newClient builds an SDK client whose HTTP requests are bounded by timeout.
func newClient(cloudName, apiKey, apiSecret string, timeout time.Duration) (*cldsdk.Cloudinary, error) {
	cld, err := cldsdk.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	if timeout > 0 {
		cld.Upload.Client = http.Client{Timeout: timeout}
	}
	return cld, nil
}

// storedImage converts an SDK upload result, treating an error body or a
// missing URL as a failure.
func storedImage(result *uploader.UploadResult, err error) (domain.StoredImage, error) {
	if err != nil {
		return domain.StoredImage{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return domain.StoredImage{}, errors.New("cloudinary upload: " + result.Error.Message)
	}
	if result.SecureURL == "" {
		return domain.StoredImage{}, errors.New("cloudinary upload returned no URL")
	}
	return domain.StoredImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// PresetUploader performs unsigned uploads with an upload preset.
type PresetUploader struct {
	cld     *cldsdk.Cloudinary
	preset  string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPresetUploader creates an unsigned uploader. Missing settings are
// reported by UploadImages, not here.
func NewPresetUploader(cloudName, preset string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*PresetUploader, error) {
	u := &PresetUploader{preset: preset, metrics: metrics, logger: logger}
	if cloudName == "" || preset == "" {
		return u, nil
	}
	cld, err := newClient(cloudName, "", "", timeout)
	if err != nil {
		return nil, err
	}
	u.cld = cld
	return u, nil
}

// UploadImages uploads files in order. An empty list succeeds without
// checking configuration.
func (u *PresetUploader) UploadImages(ctx context.Context, files []domain.ImageFile) ([]domain.StoredImage, error) {
	if len(files) == 0 {
		return []domain.StoredImage{}, nil
	}
	if u.cld == nil {
		return nil, fmt.Errorf("cloudinary: CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET are required: %w", domain.ErrNotConfigured)
	}
	return uploadAll(ctx, files, u.metrics, u.uploadOne)
}

func (u *PresetUploader) uploadOne(ctx context.Context, f domain.ImageFile) (domain.StoredImage, error) {
	img, err := storedImage(u.cld.Upload.UnsignedUpload(ctx, f.Content, u.preset, uploader.UploadParams{}))
	if err != nil {
		return domain.StoredImage{}, err
	}
	u.logger.Debug("image uploaded", "filename", f.Filename, "public_id", img.PublicID)
	return img, nil
}
