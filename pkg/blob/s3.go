package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// S3Config configures the S3 backend. Endpoint and path-style addressing
// exist for MinIO and other S3-compatible stores.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3Gateway stores blobs in an S3 bucket.
type S3Gateway struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Gateway creates an S3 gateway. With explicit keys it uses static
// credentials, otherwise the default AWS credential chain.
func NewS3Gateway(ctx context.Context, cfg S3Config) (*S3Gateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Gateway{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// key maps a rooted blob path to an S3 object key.
func key(path string) string {
	return strings.TrimPrefix(path, "/")
}

// Upload stores the archive. The overwrite check is a HeadObject before the
// put, so a concurrent publisher can still slip an object in between; the
// registry's version uniqueness makes that race harmless.
func (g *S3Gateway) Upload(ctx context.Context, path string, data []byte, overwrite bool) error {
	k := key(path)

	if !overwrite {
		_, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(g.bucket),
			Key:    aws.String(k),
		})
		if err == nil {
			return errs.New(errs.KindStorage, "file already exists in storage")
		}
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return errs.Wrap(errs.KindStorage, "failed to check file existence", err)
		}
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/tar+gzip"),
	})
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to upload file", err)
	}
	return nil
}

// Download returns the archive bytes.
func (g *S3Gateway) Download(ctx context.Context, path string) ([]byte, error) {
	result, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key(path)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, errs.New(errs.KindNotFound, "file not found")
		}
		return nil, errs.Wrap(errs.KindStorage, "failed to download file", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to read file body", err)
	}
	return data, nil
}

// Remove deletes the archive. S3 DeleteObject succeeds for missing keys.
func (g *S3Gateway) Remove(ctx context.Context, path string) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key(path)),
	})
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to delete file", err)
	}
	return nil
}

// DownloadURL presigns a GET for direct client download.
func (g *S3Gateway) DownloadURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	req, err := g.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key(path)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", errs.Wrap(errs.KindStorage, "failed to presign download", err)
	}
	return req.URL, nil
}

// UploadURL presigns a PUT for direct client upload.
func (g *S3Gateway) UploadURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	req, err := g.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key(path)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", errs.Wrap(errs.KindStorage, "failed to presign upload", err)
	}
	return req.URL, nil
}

// Ping verifies bucket reachability for health checks.
func (g *S3Gateway) Ping(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}
