package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/google/uuid"

	"github.com/alekLukanen/BreweryMedallion/config"
	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/ingestion"
	"github.com/alekLukanen/BreweryMedallion/operations"
	"github.com/alekLukanen/BreweryMedallion/storage"
	taskpackets "github.com/alekLukanen/BreweryMedallion/taskPackets"
)

type JobOptions struct {
	BucketName string
	KeyPrefix  string
}

// Job is one invocation of the medallion pipeline: claim the target, fetch
// the records and derive the three layers from them.
type Job struct {
	logger *slog.Logger

	source   ingestion.ISource
	pipeline operations.IPipeline
	locker   storage.IRunLocker

	bucketName string
	keyPrefix  string

	closers []func() error
}

func NewJob(
	ctx context.Context,
	logger *slog.Logger,
	source ingestion.ISource,
	pipeline operations.IPipeline,
	locker storage.IRunLocker,
	options JobOptions,
) (*Job, error) {
	if source == nil || pipeline == nil {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("source and pipeline are required")), ErrInvalidJob)
	}
	if locker == nil {
		locker = storage.NoopRunLocker{}
	}
	return &Job{
		logger:     logger,
		source:     source,
		pipeline:   pipeline,
		locker:     locker,
		bucketName: options.BucketName,
		keyPrefix:  options.KeyPrefix,
	}, nil
}

// NewJobFromConfig builds the storage client, the source and the pipeline
// described by the configuration.
func NewJobFromConfig(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	objectStorage, err := NewObjectStorageFromConfig(ctx, logger, cfg.Storage)
	if err != nil {
		return nil, err
	}

	sink, err := storage.NewLayerSink(ctx, logger, objectStorage, storage.LayerSinkOptions{
		BucketName: cfg.Storage.Bucket,
		KeyPrefix:  cfg.Storage.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := operations.NewPipeline(
		logger,
		memory.NewGoAllocator(),
		sink,
		DatasetFromConfig(cfg.Dataset),
		operations.PipelineOptions{
			Concurrent:            cfg.Pipeline.Concurrent,
			CollectSilverFailures: cfg.Pipeline.CollectSilverFailures,
		},
	)
	if err != nil {
		return nil, err
	}

	source, err := NewSourceFromConfig(logger, cfg.Source)
	if err != nil {
		return nil, err
	}

	var locker storage.IRunLocker = storage.NoopRunLocker{}
	closers := make([]func() error, 0)
	if cfg.Lock.Address != "" {
		runLock, err := storage.NewRunLock(ctx, logger, storage.RunLockOptions{
			Address:   cfg.Lock.Address,
			Password:  cfg.Lock.Password,
			KeyPrefix: cfg.Lock.KeyPrefix,
			Expiry:    cfg.Lock.Expiry,
		})
		if err != nil {
			return nil, err
		}
		locker = runLock
		closers = append(closers, runLock.Close)
	}

	job, err := NewJob(ctx, logger, source, pipeline, locker, JobOptions{
		BucketName: sink.BucketName(),
		KeyPrefix:  cfg.Storage.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	job.closers = closers
	return job, nil
}

func DatasetFromConfig(cfg config.DatasetConfig) elements.Dataset {
	dataset := elements.NewDataset(cfg.Name)
	if cfg.GroupAttribute != "" {
		dataset.GroupAttribute = cfg.GroupAttribute
	}
	if cfg.TypeAttribute != "" {
		dataset.TypeAttribute = cfg.TypeAttribute
	}
	return dataset
}

func NewObjectStorageFromConfig(ctx context.Context, logger *slog.Logger, cfg config.StorageConfig) (storage.IObjectStorage, error) {
	if cfg.Backend == config.StorageBackendFile {
		return storage.NewFileObjectStorage(logger, cfg.Root)
	}

	options := storage.ObjectStorageOptions{
		Endpoint:     cfg.Endpoint,
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		AuthType:     storage.ObjectStorageAuthTypeDefault,
	}
	if cfg.AccessKey != "" {
		options = *storage.NewObjectStorageOptionsFromStaticCredentials(
			cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey, cfg.UsePathStyle,
		)
	}
	options.UploadPartSize = cfg.UploadPartSize
	return storage.NewObjectStorage(ctx, logger, options)
}

func NewSourceFromConfig(logger *slog.Logger, cfg config.SourceConfig) (ingestion.ISource, error) {
	if cfg.File != "" {
		return ingestion.NewFileSource(logger, cfg.File)
	}
	return ingestion.NewHTTPSource(logger, http.DefaultClient, ingestion.HTTPSourceOptions{
		URL:     cfg.URL,
		PerPage: cfg.PerPage,
		Timeout: cfg.Timeout,
	})
}

/*
* Handle runs the job once. Layer failures are reported inside a 200
* response. Only a failure to claim the target or to fetch the records
* produces the 500 response, and in that case no layer runs.
 */
func (obj *Job) Handle(ctx context.Context, event taskpackets.TriggerEvent) Response {
	logger := obj.logger.With(
		slog.String("runId", uuid.NewString()),
		slog.String("eventId", event.Id()),
	)
	logger.Info("job started", slog.String("source", event.Source))

	lock, err := obj.locker.ClaimTarget(ctx, obj.bucketName, obj.keyPrefix)
	if err != nil {
		logger.Error(
			"failed claiming run lock",
			slog.Bool("heldElsewhere", storage.IsLockHeld(err)),
			slog.String("error", errs.ErrorWithStack(err)),
		)
		return ingestionFailureResponse()
	}
	defer func() {
		if _, err := obj.locker.ReleaseTarget(context.WithoutCancel(ctx), lock); err != nil {
			logger.Warn("failed releasing run lock", slog.String("error", errs.ErrorWithStack(err)))
		}
	}()

	records, err := obj.source.Fetch(ctx)
	if err != nil {
		err = errs.Wrap(err, fmt.Errorf("%w| fetching records", ErrIngestionFailed))
		logger.Error("failed fetching records", slog.String("error", errs.ErrorWithStack(err)))
		return ingestionFailureResponse()
	}

	result := obj.pipeline.Run(ctx, records)
	logger.Info(
		"job finished",
		slog.Int("numRecords", records.Len()),
		slog.Bool("bronzeOk", result.Bronze.OK),
		slog.Bool("silverOk", result.Silver.OK),
		slog.Bool("goldOk", result.Gold.OK),
	)
	return successResponse(result)
}

func (obj *Job) Close() error {
	var firstErr error
	for _, closer := range obj.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
