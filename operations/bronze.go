package operations

import (
	"context"
	"log/slog"

	"github.com/alekLukanen/errs"

	arrowops "github.com/alekLukanen/BreweryMedallion/arrowOps"
	"github.com/alekLukanen/BreweryMedallion/elements"
)

/*
* Write the full record set, unmodified, to the bronze path. An empty record
* set is a valid write of zero rows.
 */
func (obj *Pipeline) ProduceBronze(ctx context.Context, records elements.RecordSet) (status elements.LayerStatus) {
	fileName := obj.paths.BronzeFileName()
	failureMessage := func(err error) string { return fileErrorMessage(fileName, err) }
	defer obj.recoverStage(elements.LayerBronze, failureMessage, &status)

	schema := arrowops.RecordSetSchema(records, obj.dataset.GroupAttribute, obj.dataset.TypeAttribute)
	rec, err := arrowops.RecordSetToArrow(obj.allocator, records, schema)
	if err != nil {
		obj.logger.Error("failed building bronze record", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerBronze, failureMessage(err))
	}
	defer rec.Release()

	artifact, err := obj.sink.Write(ctx, rec, obj.paths.BronzePath())
	if err != nil {
		obj.logger.Error("failed writing bronze file", slog.String("error", errs.ErrorWithStack(err)))
		return elements.FailureStatus(elements.LayerBronze, failureMessage(err))
	}

	return elements.SuccessStatus(elements.LayerBronze, fileSavedMessage(fileName), artifact)
}
