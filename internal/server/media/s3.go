// Package media issues presigned URLs for uploading and serving page media
// assets stored in an S3-compatible backend (MinIO in development).
package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/vkazarins/pagecraft/internal/server/config"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Library hands out presigned URLs for media assets. Assets are keyed per
// page so orphans can be swept when a page is dropped.
type Library struct {
	config *sc.Config
}

func NewLibrary(config *sc.Config) *Library {
	return &Library{config: config}
}

// StorageKey builds a fresh object key for an asset belonging to the given
// page. The original filename only contributes its extension.
func StorageKey(pageSlug, filename string) string {
	return fmt.Sprintf("pages/%s/%v%s", pageSlug, uuid.New(), strings.ToLower(path.Ext(filename)))
}

// KindForFilename infers whether an uploaded file is an image or a video from
// its extension. Unrecognized extensions default to image.
func KindForFilename(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp4", ".webm", ".mov", ".m4v":
		return "video"
	default:
		return "image"
	}
}

func (l *Library) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(l.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			l.config.S3RootUser,     // MINIO_ROOT_USER
			l.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(l.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetPresignedPutUrl returns the storage key for a new asset of the page and
// a presigned PUT URL the editor can upload it to.
func (l *Library) GetPresignedPutUrl(ctx context.Context, pageSlug, filename string) (string, string, error) {
	presignClient, err := l.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := l.config.S3Bucket
	key := StorageKey(pageSlug, filename)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetPresignedGetUrl returns a presigned GET URL for an existing asset key.
func (l *Library) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {
	presignClient, err := l.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := l.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
