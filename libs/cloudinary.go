package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.URL != "" || (c.CloudName != "" && c.APIKey != "" && c.APISecret != "")
}

// CloudinaryImageStore hosts food images on Cloudinary.
type CloudinaryImageStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryImageStore(cfg CloudinaryConfig, folder string) (*CloudinaryImageStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryImageStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryImageStore) Save(ctx context.Context, r io.Reader, _ string) (string, string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: fmt.Sprintf("food_%d", time.Now().UnixNano()),
		Folder:   s.folder,
	})
	if err != nil {
		return "", "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp == nil {
		return "", "", errors.New("cloudinary response is nil")
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	if url == "" {
		return "", "", errors.New("cloudinary returned no url")
	}
	return url, resp.PublicID, nil
}

func (s *CloudinaryImageStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}
