// Package archive pushes the PDF of every approved report to an S3-compatible
// bucket (Cloudflare R2 in production) so the signed record survives a
// database loss. Upload failures are logged, never fatal: the database row
// remains the source of truth.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures the bucket connection. Empty AccessKey disables
// archival entirely.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

type Uploader struct {
	client *s3.Client
	bucket string
}

// New builds an Uploader, or returns nil when archival is not configured.
// A nil *Uploader is safe to call; its methods are no-ops.
func New(ctx context.Context, opts Options) (*Uploader, error) {
	if opts.AccessKey == "" || opts.Bucket == "" {
		log.Println("[Archive] no credentials configured, PDF archival disabled")
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
		awsconfig.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Uploader{client: client, bucket: opts.Bucket}, nil
}

// UploadPDF stores the rendered PDF of an approved report under
// reports/<variant>/<documentNo>.pdf. Re-approval after a rejection cycle
// overwrites the earlier object.
func (u *Uploader) UploadPDF(ctx context.Context, variant, documentNo string, data []byte) error {
	if u == nil {
		return nil
	}

	key := fmt.Sprintf("reports/%s/%s.pdf", variant, documentNo)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}

	log.Printf("[Archive] uploaded %s (%d bytes)", key, len(data))
	return nil
}
