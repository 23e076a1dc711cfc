package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"notes-marketplace/internal/config"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidAssetKey = errors.New("invalid asset key")

// ObjectStorage stores listing assets by key. URLs it mints are public: anyone holding
// one can fetch the asset, so access policy lives in the access gate.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) (string, error)
}

func NewObjectStorage(ctx context.Context, cfg *config.Config) (ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case "disk":
		return NewDiskStorage(cfg.Storage.Dir, cfg.AssetBaseURL())
	case "s3":
		return NewS3Storage(ctx, cfg.AWS.Region, cfg.Storage.Endpoint, cfg.Storage.Bucket, cfg.AssetBaseURL())
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.ContainsAny(key, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetKey, key)
	}
	return nil
}

func joinPublicURL(base, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if base == "" {
		return "", errors.New("public base url not configured")
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key), nil
}

// --- disk ---

type diskStorageImpl struct {
	root    string
	baseURL string
}

func NewDiskStorage(root, publicBaseURL string) (ObjectStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &diskStorageImpl{root: root, baseURL: publicBaseURL}, nil
}

func (s *diskStorageImpl) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.root, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write asset file: %w", err)
	}
	return f.Close()
}

func (s *diskStorageImpl) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove asset file: %w", err)
	}
	return nil
}

func (s *diskStorageImpl) PublicURL(key string) (string, error) {
	return joinPublicURL(s.baseURL, key)
}

// --- s3 ---

type s3StorageImpl struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, region, endpoint, bucket, publicBaseURL string) (ObjectStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3StorageImpl{client: client, bucket: bucket, baseURL: publicBaseURL}, nil
}

func (s *s3StorageImpl) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object [%s]: %w", key, err)
	}
	return nil
}

func (s *s3StorageImpl) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object [%s]: %w", key, err)
	}
	return nil
}

func (s *s3StorageImpl) PublicURL(key string) (string, error) {
	return joinPublicURL(s.baseURL, key)
}
