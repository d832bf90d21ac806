package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sayedsafi2000/pixelsbee/internal/common"
	sc "github.com/sayedsafi2000/pixelsbee/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService hosts uploaded product images in an S3-compatible bucket.
type ImageService struct {
	config *sc.Config
}

func NewImageService(config *sc.Config) *ImageService {
	return &ImageService{config: config}
}

// NewImageKey returns a date-partitioned unique object key.
func NewImageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("products/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *ImageService) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload stores body under a fresh key and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, body io.Reader, size int64, contentType string) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", common.NewError(common.ErrorInvalidInput, "Only JPEG, PNG, GIF and WebP images are allowed")
	}
	if size <= 0 {
		return "", common.NewError(common.ErrorInvalidInput, "No file uploaded")
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("error configuring storage: %w", err)
	}

	key := NewImageKey(ext)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *ImageService) publicURL(key string) string {
	base := strings.TrimRight(s.config.S3PublicBaseURL, "/")
	return base + "/" + path.Clean(key)
}
