package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"

	arrowops "github.com/alekLukanen/BreweryMedallion/arrowOps"
	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/partitionFuncs"
)

const SilverSuccessMessage = "Silver files saved successfully!"

/*
* Partition the record set by the group attribute and write one file per
* partition. Every partition uses the schema of the whole record set so the
* silver files are uniform. By default the loop stops at the first partition
* that fails and reports that partition's message; partitions written before
* it stay written.
 */
func (obj *Pipeline) ProduceSilver(ctx context.Context, records elements.RecordSet) (status elements.LayerStatus) {
	failureMessage := func(err error) string { return fmt.Sprintf("Error saving silver files: %s", errorText(err)) }
	defer obj.recoverStage(elements.LayerSilver, failureMessage, &status)

	partitions, err := partitionFuncs.ExactValuePartition(records, obj.dataset.GroupAttribute)
	if err != nil {
		obj.logger.Error("failed partitioning silver records", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerSilver, failureMessage(err))
	}
	obj.logger.Debug("silver partitions", slog.Int("numPartitions", len(partitions)))

	schema := arrowops.RecordSetSchema(records, obj.dataset.GroupAttribute, obj.dataset.TypeAttribute)

	artifacts := make([]elements.LayerArtifact, 0, len(partitions))
	failures := make([]string, 0)
	for _, part := range partitions {
		artifact, err := obj.writeSilverPartition(ctx, part, schema)
		if err != nil {
			obj.logger.Error(
				"failed writing silver partition",
				slog.String("partition", part.Key.String()),
				slog.String("error", errs.ErrorWithStack(err)),
			)
			message := fileErrorMessage(obj.paths.SilverFileName(part.Key), err)
			if !obj.options.CollectSilverFailures {
				return elements.FailureStatus(elements.LayerSilver, message, artifacts...)
			}
			failures = append(failures, message)
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	if len(failures) > 0 {
		return elements.FailureStatus(elements.LayerSilver, strings.Join(failures, "; "), artifacts...)
	}
	return elements.SuccessStatus(elements.LayerSilver, SilverSuccessMessage, artifacts...)
}

func (obj *Pipeline) writeSilverPartition(ctx context.Context, part elements.Partition, schema *arrow.Schema) (elements.LayerArtifact, error) {
	rec, err := arrowops.RecordSetToArrow(obj.allocator, part.Records, schema)
	if err != nil {
		return elements.LayerArtifact{}, errs.Wrap(err, fmt.Errorf("%w| partition %s", ErrPartitionFailed, part.Key))
	}
	defer rec.Release()

	return obj.sink.Write(ctx, rec, obj.paths.SilverPath(part.Key))
}
