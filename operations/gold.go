package operations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"

	arrowops "github.com/alekLukanen/BreweryMedallion/arrowOps"
	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/partitionFuncs"
)

/*
* Count the records per (type, group) pair and write the counts to the gold
* path. Rows are in first occurrence order of the pair.
 */
func (obj *Pipeline) ProduceGold(ctx context.Context, records elements.RecordSet) (status elements.LayerStatus) {
	aggregateFailure := func(err error) string { return fmt.Sprintf("Error saving gold file: %s", errorText(err)) }
	defer obj.recoverStage(elements.LayerGold, aggregateFailure, &status)

	rows, err := partitionFuncs.CountByPair(records, obj.dataset.TypeAttribute, obj.dataset.GroupAttribute)
	if err != nil {
		obj.logger.Error("failed aggregating gold records", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerGold, aggregateFailure(err))
	}
	obj.logger.Debug("gold aggregate", slog.Int("numRows", len(rows)))

	rec, err := arrowops.AggregateRowsToArrow(obj.allocator, rows, obj.dataset.TypeAttribute, obj.dataset.GroupAttribute)
	if err != nil {
		obj.logger.Error("failed building gold record", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerGold, aggregateFailure(err))
	}
	defer rec.Release()

	fileName := obj.paths.GoldFileName()
	artifact, err := obj.sink.Write(ctx, rec, obj.paths.GoldPath())
	if err != nil {
		obj.logger.Error("failed writing gold file", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerGold, fileErrorMessage(fileName, err))
	}

	return elements.SuccessStatus(elements.LayerGold, fileSavedMessage(fileName), artifact)
}
