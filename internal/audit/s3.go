package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes audit batches as JSON objects
type S3Archive struct {
	Client s3API
	Bucket string
}

// NewS3Archive returns a disabled archive when bucket is empty
func NewS3Archive(cfg aws.Config, bucket string) *S3Archive {
	if bucket == "" {
		return &S3Archive{}
	}
	return &S3Archive{Client: s3.NewFromConfig(cfg), Bucket: bucket}
}

func (a *S3Archive) Enabled() bool { return a != nil && a.Client != nil && a.Bucket != "" }

func (a *S3Archive) UploadJSON(ctx context.Context, key string, v any) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("audit archive not configured")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	_, err = a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.Bucket, key), nil
}

// TimestampKey builds a date-partitioned object key
func TimestampKey(prefix string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s%s/%s-%s.json", prefix, now.Format("2006/01/02"), now.Format("20060102T150405Z"), uuid.NewString()[:8])
}
