package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/sync/errgroup"

	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/storage"
)

type IPipeline interface {
	Run(ctx context.Context, records elements.RecordSet) Result
}

type PipelineOptions struct {
	// run the three stages at the same time instead of bronze, silver, gold
	Concurrent bool
	// keep writing silver partitions after one fails and report every failure
	CollectSilverFailures bool
}

type Result struct {
	Bronze elements.LayerStatus
	Silver elements.LayerStatus
	Gold   elements.LayerStatus
}

func (obj Result) OK() bool {
	return obj.Bronze.OK && obj.Silver.OK && obj.Gold.OK
}

// Pipeline derives the bronze, silver and gold layers from one record set.
// Each stage reads the same record set and reports its own status, a failed
// stage never stops the others.
type Pipeline struct {
	logger    *slog.Logger
	allocator memory.Allocator
	sink      storage.ILayerSink

	dataset elements.Dataset
	paths   storage.LayerPaths
	options PipelineOptions
}

func NewPipeline(
	logger *slog.Logger,
	allocator memory.Allocator,
	sink storage.ILayerSink,
	dataset elements.Dataset,
	options PipelineOptions,
) (*Pipeline, error) {
	if err := dataset.IsValid(); err != nil {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("dataset %q", dataset.Name)), err, ErrPipelineInvalid)
	}
	if sink == nil {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("layer sink is required")), ErrPipelineInvalid)
	}
	if allocator == nil {
		allocator = memory.NewGoAllocator()
	}

	return &Pipeline{
		logger:    logger,
		allocator: allocator,
		sink:      sink,
		dataset:   dataset,
		paths:     storage.NewLayerPaths(dataset),
		options:   options,
	}, nil
}

func (obj *Pipeline) Paths() storage.LayerPaths {
	return obj.paths
}

func (obj *Pipeline) Run(ctx context.Context, records elements.RecordSet) Result {
	obj.logger.Info(
		"running pipeline",
		slog.Int("numRecords", records.Len()),
		slog.Bool("concurrent", obj.options.Concurrent),
	)

	var result Result
	if obj.options.Concurrent {
		// each goroutine owns one field of the result
		var g errgroup.Group
		g.Go(func() error {
			result.Bronze = obj.ProduceBronze(ctx, records)
			return nil
		})
		g.Go(func() error {
			result.Silver = obj.ProduceSilver(ctx, records)
			return nil
		})
		g.Go(func() error {
			result.Gold = obj.ProduceGold(ctx, records)
			return nil
		})
		_ = g.Wait()
	} else {
		result.Bronze = obj.ProduceBronze(ctx, records)
		result.Silver = obj.ProduceSilver(ctx, records)
		result.Gold = obj.ProduceGold(ctx, records)
	}

	for _, status := range []elements.LayerStatus{result.Bronze, result.Silver, result.Gold} {
		obj.logStatus(status)
	}
	return result
}

func (obj *Pipeline) logStatus(status elements.LayerStatus) {
	attrs := []any{
		slog.String("layer", string(status.Layer)),
		slog.String("message", status.Message),
		slog.Int("numArtifacts", len(status.Artifacts)),
	}
	if status.OK {
		obj.logger.Info("layer finished", attrs...)
	} else {
		obj.logger.Error("layer failed", attrs...)
	}
}

// recoverStage turns a panic inside a stage into a failed status.
func (obj *Pipeline) recoverStage(layer elements.Layer, failureMessage func(error) string, status *elements.LayerStatus) {
	if r := recover(); r != nil {
		err := errs.Wrap(errs.NewStackError(fmt.Errorf("%v", r)), ErrStagePanicked)
		obj.logger.Error(
			"stage panicked",
			slog.String("layer", string(layer)),
			slog.String("error", errs.ErrorWithStack(err)),
		)
		*status = elements.FailureStatus(layer, failureMessage(err))
	}
}

func fileSavedMessage(fileName string) string {
	return fmt.Sprintf("File %s saved successfully!", fileName)
}

func fileErrorMessage(fileName string, err error) string {
	return fmt.Sprintf("Error saving file %s: %s", fileName, errorText(err))
}

// errorText renders an error on one line. Stack errors and wrapped errors are
// listed one message per line, those messages are joined with ": ".
func errorText(err error) string {
	lines := strings.Split(err.Error(), "\n")
	parts := make([]string, 0, len(lines))
	for idx, line := range lines {
		if idx == 0 && line == errs.ERR_MSG_TITLE && len(lines) > 1 {
			continue
		}
		if strings.HasPrefix(line, "- [") {
			if end := strings.Index(line, "] "); end > 0 {
				line = line[end+2:]
			}
		} else if len(lines) > 1 {
			line = strings.TrimPrefix(line, "- ")
		}
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ": ")
}
