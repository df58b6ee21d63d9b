// Package storage keeps uploaded images. The local provider writes into the configured upload
// directory; the S3 provider writes into a bucket. Keys are single sanitized filenames.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/inkwell/blog/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

var (
	// ErrNotExist object is missing
	ErrNotExist = errors.New("object does not exist")
	// ErrInvalidKey key is not a plain filename
	ErrInvalidKey = errors.New("invalid object key")
)

// Provider is an upload storage backend.
type Provider interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Object is a stored file. Callers close Body.
type Object struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}

// New builds the provider selected in cfg
func New(cfg config.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalProvider(cfg.UploadDir)
	case "s3":
		awsCfg := &aws.Config{
			Region:           aws.String(cfg.S3.Region),
			S3ForcePathStyle: aws.Bool(cfg.S3.Endpoint != ""),
		}
		if cfg.S3.Endpoint != "" {
			awsCfg.Endpoint = aws.String(cfg.S3.Endpoint)
		}
		if cfg.S3.AccessKeyID != "" {
			awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
		}
		sess, err := session.NewSession(awsCfg)
		if err != nil {
			return nil, fmt.Errorf("create aws session: %w", err)
		}
		return NewS3Provider(sess, cfg.S3.Bucket, cfg.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
