package operations

import (
	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/partitionFuncs"
	"github.com/alekLukanen/BreweryMedallion/storage"
)

// PlanKeys lists the logical keys a run over the records would write, in
// write order: bronze, each silver partition, gold.
func PlanKeys(dataset elements.Dataset, records elements.RecordSet) ([]string, error) {
	partitions, err := partitionFuncs.ExactValuePartition(records, dataset.GroupAttribute)
	if err != nil {
		return nil, err
	}

	paths := storage.NewLayerPaths(dataset)
	keys := make([]string, 0, len(partitions)+2)
	keys = append(keys, paths.BronzePath())
	for _, part := range partitions {
		keys = append(keys, paths.SilverPath(part.Key))
	}
	keys = append(keys, paths.GoldPath())
	return keys, nil
}
