package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// S3Client interface for S3 operations (allows mocking in tests)
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher stores rendered quote PDFs in a bucket.
type Publisher struct {
	s3     S3Client
	bucket string
	prefix string
	logger *logging.Logger
}

// PublisherConfig holds configuration for the Publisher.
type PublisherConfig struct {
	S3     S3Client
	Bucket string
	Prefix string
	Logger *logging.Logger
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "quotes"
	}
	return &Publisher{s3: cfg.S3, bucket: cfg.Bucket, prefix: prefix, logger: cfg.Logger}
}

// Publish renders d and uploads it, returning the object key.
func (p *Publisher) Publish(ctx context.Context, d QuoteDocument) (string, error) {
	if p == nil || p.s3 == nil || strings.TrimSpace(p.bucket) == "" {
		return "", fmt.Errorf("document: s3 bucket not configured")
	}
	body, err := Render(d)
	if err != nil {
		return "", err
	}
	key := p.prefix + "/" + d.Filename()
	_, err = p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"quote-id": d.Quote.ID,
			"lead-id":  d.Quote.LeadID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("document: upload %s: %w", key, err)
	}
	p.logger.Info("quote document published", "quote_id", d.Quote.ID, "bucket", p.bucket, "key", key, "bytes", len(body))
	return key, nil
}
