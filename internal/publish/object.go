package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectSinkConfig holds S3-compatible bucket settings (AWS S3, Cloudflare R2, MinIO)
type ObjectSinkConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// objectAPI is the subset of the S3 client the sink uses
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// ObjectSink uploads the canonical results CSV to a bucket
type ObjectSink struct {
	BaseSink
	client objectAPI
	bucket string
	prefix string
}

// NewObjectSink creates a sink for an S3-compatible bucket
func NewObjectSink(ctx context.Context, cfg ObjectSinkConfig) (*ObjectSink, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("invalid object storage configuration: bucket and credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newObjectSink(client, cfg.Bucket, cfg.Prefix), nil
}

func newObjectSink(client objectAPI, bucket, prefix string) *ObjectSink {
	return &ObjectSink{
		BaseSink: BaseSink{sinkType: "s3"},
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Keys returns the object keys a race's results are written to
func (s *ObjectSink) Keys(raceID string) []string {
	return []string{
		path.Join(s.prefix, "results", raceID+".csv"),
		path.Join(s.prefix, "results", "latest.csv"),
	}
}

// Publish uploads the CSV under the race key and the latest key
func (s *ObjectSink) Publish(ctx context.Context, pub *Publication) error {
	for _, key := range s.Keys(pub.Snapshot.RaceID) {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(pub.CSV),
			ContentType: aws.String("text/csv"),
		})
		if err != nil {
			return fmt.Errorf("failed to upload object (key: %s): %w", key, err)
		}
	}

	slog.Debug("results uploaded", "bucket", s.bucket, "race_id", pub.Snapshot.RaceID)
	return nil
}

// HealthCheck verifies the bucket is reachable
func (s *ObjectSink) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
