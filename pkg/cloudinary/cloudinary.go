package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// PhotoStore keeps attendance photos in Cloudinary.
type PhotoStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// NewPhotoStore constructs a Cloudinary-backed photo store.
func NewPhotoStore(cfg Config, logger zerolog.Logger) (*PhotoStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &PhotoStore{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "photo_store").Logger(),
	}, nil
}

// Upload stores an image under the tenant's folder and returns its secure URL.
// The key is "<tenant>/<name>"; the name's extension is dropped from the public id.
func (s *PhotoStore) Upload(ctx context.Context, key string, reader io.Reader) (string, error) {
	folder, publicID := s.locate(key)

	overwrite := false
	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    &overwrite,
		Tags:         api.CldAPIArray{"attendance"},
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected photo: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("attendance photo stored")

	return result.SecureURL, nil
}

func (s *PhotoStore) locate(key string) (string, string) {
	dir, file := path.Split(strings.Trim(key, "/"))
	folder := strings.Trim(path.Join(s.folder, dir), "/")

	base := strings.TrimSuffix(file, path.Ext(file))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "photo"
	}

	return folder, base + "-" + uuid.NewString()[:8]
}
