// Package storage uploads production slips to S3-compatible object storage
// (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"timber-backend/internal/config"
)

// ObjectPutter is the part of the S3 client the archive needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type SlipArchive struct {
	client ObjectPutter
	bucket string
}

// NewSlipArchive builds an archive on top of an existing client
func NewSlipArchive(client ObjectPutter, bucket string) *SlipArchive {
	return &SlipArchive{client: client, bucket: bucket}
}

// NewSlipArchiveFromConfig configures an S3 client from the archive settings
func NewSlipArchiveFromConfig(ctx context.Context, cfg *config.Config) (*SlipArchive, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Archive.Region),
	}
	if cfg.Archive.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewSlipArchive(client, cfg.Archive.Bucket), nil
}

// SlipKey is the object key of an entry's slip
func SlipKey(orgID, entryID int) string {
	return fmt.Sprintf("slips/%d/%d.pdf", orgID, entryID)
}

// ArchiveSlip uploads the PDF, replacing an earlier upload of the same entry
func (a *SlipArchive) ArchiveSlip(ctx context.Context, orgID, entryID int, pdf []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	key := SlipKey(orgID, entryID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	zap.L().Info("production slip archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return nil
}
