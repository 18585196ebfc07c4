package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// XLSXContentType is the MIME type of the exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DownloadURLExpiry bounds how long a presigned export link stays valid.
const DownloadURLExpiry = 15 * time.Minute

// ObjectStore is the subset of object storage the export job needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// ExportKey builds a unique object key under prefix, e.g.
// exports/2024/06/paid-orders-<uuid>.xlsx
func ExportKey(prefix, name string, at time.Time) string {
	return path.Join(prefix, at.Format("2006/01"), fmt.Sprintf("%s-%s.xlsx", name, uuid.New().String()))
}

// Upload writes body to key.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// DownloadURL returns a presigned GET for key. Exports hold customer data,
// so the public baseURL is only used when no signing is possible.
func (s *S3Storage) DownloadURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		if s.baseURL != "" {
			return fmt.Sprintf("%s/%s", s.baseURL, key), nil
		}
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
