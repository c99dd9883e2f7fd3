package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/coursehive/coursehive-backend/pkg/config"
	"github.com/coursehive/coursehive-backend/pkg/logger"
)

const defaultTimeout = 30 * time.Second

var errCredentialsRequired = errors.New("cloudinary cloud name, api key and api secret are required")

// Asset describes a stored image after a successful upload.
type Asset struct {
	PublicID string
	URL      string
}

// Uploader abstracts the asset store so services can be tested with fakes.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Client wraps the Cloudinary SDK with folder defaults and call deadlines.
type Client struct {
	sdk     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

// NewClient validates credentials and builds the upload client.
func NewClient(ctx context.Context, cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	cloudName := strings.TrimSpace(cfg.CloudName)
	apiKey := strings.TrimSpace(cfg.APIKey)
	apiSecret := strings.TrimSpace(cfg.APISecret)
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errCredentialsRequired
	}

	sdk, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logg != nil {
		logg.Info(ctx, "cloudinary client initialized")
	}

	return &Client{
		sdk:     sdk,
		folder:  strings.TrimSpace(cfg.Folder),
		timeout: timeout,
	}, nil
}

// Upload pushes the file to the configured folder and returns the stored asset.
func (c *Client) Upload(ctx context.Context, file io.Reader) (*Asset, error) {
	if c == nil || c.sdk == nil {
		return nil, errors.New("cloudinary client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.sdk.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("uploading asset: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("uploading asset: %s", result.Error.Message)
	}

	return &Asset{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
	}, nil
}

// Destroy removes the asset identified by publicID.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c == nil || c.sdk == nil {
		return errors.New("cloudinary client not initialized")
	}
	if strings.TrimSpace(publicID) == "" {
		return errors.New("public id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.sdk.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroying asset %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("destroying asset %s: %s", publicID, result.Error.Message)
	}
	return nil
}
