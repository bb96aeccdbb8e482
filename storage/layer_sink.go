package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"

	arrowops "github.com/alekLukanen/BreweryMedallion/arrowOps"
	"github.com/alekLukanen/BreweryMedallion/elements"
)

type ILayerSink interface {
	Write(ctx context.Context, record arrow.Record, key string) (elements.LayerArtifact, error)
}

type LayerSinkOptions struct {
	BucketName string
	KeyPrefix  string
}

// LayerSink encodes a record as parquet and deposits it at a logical key.
// The whole file is encoded before the single upload call so a failed
// encoding never leaves a partial object behind.
type LayerSink struct {
	logger *slog.Logger

	IObjectStorage

	bucketName string
	keyPrefix  string
}

func NewLayerSink(
	ctx context.Context,
	logger *slog.Logger,
	objectStorage IObjectStorage,
	options LayerSinkOptions,
) (*LayerSink, error) {
	if options.BucketName == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("bucket name is required")), ErrInvalidOptions)
	}
	return &LayerSink{
		logger:         logger,
		IObjectStorage: objectStorage,
		bucketName:     options.BucketName,
		keyPrefix:      strings.Trim(options.KeyPrefix, "/"),
	}, nil
}

func (obj *LayerSink) BucketName() string {
	return obj.bucketName
}

// ObjectKey returns the storage key for a logical layer path.
func (obj *LayerSink) ObjectKey(key string) string {
	if obj.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", obj.keyPrefix, key)
}

func (obj *LayerSink) Write(ctx context.Context, record arrow.Record, key string) (elements.LayerArtifact, error) {
	data, err := arrowops.WriteRecordToParquetBytes(ctx, record)
	if err != nil {
		return elements.LayerArtifact{}, errs.Wrap(err, fmt.Errorf("failed encoding parquet for key %s", key))
	}

	objectKey := obj.ObjectKey(key)
	err = obj.Upload(ctx, obj.bucketName, objectKey, data)
	if err != nil {
		return elements.LayerArtifact{}, errs.Wrap(err, fmt.Errorf("failed uploading object %s", objectKey))
	}

	obj.logger.Debug(
		"wrote layer artifact",
		slog.String("key", objectKey),
		slog.Int64("numRows", record.NumRows()),
		slog.Int("numBytes", len(data)),
	)

	return elements.LayerArtifact{
		Key:      objectKey,
		NumRows:  record.NumRows(),
		NumBytes: len(data),
	}, nil
}
