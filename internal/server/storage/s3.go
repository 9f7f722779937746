// Package storage uploads user media (avatars, cover images) to S3-compatible
// object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrUpload wraps every failure to push a file to object storage.
var ErrUpload = errors.New("upload failed")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Options configures an Uploader. PublicURL is the prefix returned links are
// built from; when empty it is BaseEndpoint/Bucket.
type Options struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	PublicURL    string
}

// UploadResult describes a stored object.
type UploadResult struct {
	URL string
	Key string
}

type Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewUploader builds the S3 client once. Path-style addressing keeps MinIO
// endpoints working.
func NewUploader(ctx context.Context, opts Options) (*Uploader, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	public := opts.PublicURL
	if public == "" {
		public = strings.TrimRight(opts.BaseEndpoint, "/") + "/" + opts.Bucket
	}

	return &Uploader{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(public, "/"),
		now:       time.Now,
	}, nil
}

// StorageKey returns media/<yyyy>/<m>/<d>/<uuid><ext>.
func StorageKey(now time.Time, ext string) string {
	return fmt.Sprintf("media/%d/%d/%d/%v%s", now.Year(), now.Month(), now.Day(), uuid.New(), strings.ToLower(ext))
}

// Upload pushes the file at localPath and removes it afterwards, whatever the
// outcome. An empty path is not an error and yields a nil result.
func (u *Uploader) Upload(ctx context.Context, localPath string) (*UploadResult, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer f.Close()

	ext := filepath.Ext(localPath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := StorageKey(u.now(), ext)
	_, err = putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return &UploadResult{URL: u.publicURL + "/" + key, Key: key}, nil
}
