package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	ObjectStorageAuthTypeStatic  = "static"
	ObjectStorageAuthTypeDefault = "default"
)

type IObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, body []byte) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

type ObjectStorageOptions struct {
	Endpoint     string
	Region       string
	AuthKey      string
	AuthSecret   string
	UsePathStyle bool
	AuthType     string

	// multipart part size for uploads, the manager default when zero
	UploadPartSize int64
}

func NewObjectStorageOptionsFromStaticCredentials(
	endpoint string,
	region string,
	authKey string,
	authSecret string,
	usePathStyle bool,
) *ObjectStorageOptions {
	return &ObjectStorageOptions{
		Endpoint:     endpoint,
		Region:       region,
		AuthKey:      authKey,
		AuthSecret:   authSecret,
		UsePathStyle: usePathStyle,
		AuthType:     ObjectStorageAuthTypeStatic,
	}
}

type ObjectStorage struct {
	logger *slog.Logger

	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

func NewObjectStorage(
	ctx context.Context,
	logger *slog.Logger,
	options ObjectStorageOptions,
) (*ObjectStorage, error) {

	configFuncs := make([]func(*config.LoadOptions) error, 0)
	if options.Region != "" {
		configFuncs = append(configFuncs, config.WithRegion(options.Region))
	}

	if options.AuthType == ObjectStorageAuthTypeStatic {
		creds := credentials.NewStaticCredentialsProvider(options.AuthKey, options.AuthSecret, "")
		configFuncs = append(configFuncs, config.WithCredentialsProvider(creds))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, configFuncs...)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("failed loading aws config"))
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = options.UsePathStyle
		// a failed write is reported once to the caller, never resent
		o.Retryer = aws.NopRetryer{}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if options.UploadPartSize > 0 {
			u.PartSize = options.UploadPartSize
		}
	})

	return &ObjectStorage{
		logger:     logger,
		client:     client,
		uploader:   uploader,
		downloader: manager.NewDownloader(client),
	}, nil
}

func contentType(key string) *string {
	if strings.HasSuffix(key, ".parquet") {
		return aws.String("application/vnd.apache.parquet")
	}
	return aws.String("application/octet-stream")
}

func (obj *ObjectStorage) Upload(ctx context.Context, bucket, key string, body []byte) error {
	obj.logger.Debug(
		"uploading object", slog.String("bucket", bucket), slog.String("key", key), slog.Int("numBytes", len(body)),
	)

	_, err := obj.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: contentType(key),
	})
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("put s3://%s/%s", bucket, key))
	}
	return nil
}

func (obj *ObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj.logger.Debug("downloading object", slog.String("bucket", bucket), slog.String("key", key))

	buf := manager.NewWriteAtBuffer(make([]byte, 0))
	_, err := obj.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("s3://%s/%s", bucket, key)), ErrObjectNotFound)
		}
		return nil, errs.Wrap(err, fmt.Errorf("get s3://%s/%s", bucket, key))
	}
	return buf.Bytes(), nil
}

func (obj *ObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	obj.logger.Debug("deleting object", slog.String("bucket", bucket), slog.String("key", key))

	_, err := obj.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("delete s3://%s/%s", bucket, key))
	}
	return nil
}

// ListObjects returns every key under the prefix, following continuation
// tokens until the listing is exhausted.
func (obj *ObjectStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	obj.logger.Debug("listing objects", slog.String("bucket", bucket), slog.String("prefix", prefix))

	keys := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(obj.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("list s3://%s/%s", bucket, prefix))
		}
		for _, item := range page.Contents {
			keys = append(keys, aws.ToString(item.Key))
		}
	}
	return keys, nil
}
