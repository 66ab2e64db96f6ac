// Package media uploads editorial images to Cloudflare R2 over the S3 API
// and hands back the public image_url stored on news items.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Zhihong0321/ATAP-solar/internal/config"
)

// Uploader wraps the S3 client for R2 image uploads.
type Uploader struct {
	s3Client  *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// NewUploader creates an R2-backed uploader. R2 ignores the region but the
// SDK requires one, so "auto" is used by convention.
func NewUploader(cfg *config.Config) (*Uploader, error) {
	if !cfg.MediaEnabled() {
		return nil, fmt.Errorf("R2 media uploads are not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKey,
			cfg.R2SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true
	})

	return &Uploader{
		s3Client:  client,
		bucket:    cfg.R2Bucket,
		endpoint:  strings.TrimSuffix(cfg.R2Endpoint, "/"),
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// UploadImage stores one image under a dated, collision-free key and returns
// its public URL.
func (u *Uploader) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	key := fmt.Sprintf("images/%s/%s%s", time.Now().Format("2006/01"), uuid.NewString(), ext)

	_, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if u.publicURL != "" {
		return u.publicURL + "/" + key, nil
	}
	return u.endpoint + "/" + u.bucket + "/" + key, nil
}
