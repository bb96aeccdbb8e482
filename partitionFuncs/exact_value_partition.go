package partitionFuncs

import (
	"fmt"

	"github.com/alekLukanen/errs"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

/*
* Partition the records by the exact value of the attribute. Partitions are
* returned in the order their key first appears and records keep their
* relative order inside each partition. Records without the attribute land
* in the null partition.
 */
func ExactValuePartition(records elements.RecordSet, attribute string) ([]elements.Partition, error) {
	if attribute == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("partition attribute is empty")), ErrInvalidPartitionOptions)
	}

	order := make([]elements.Value, 0)
	groups := make(map[elements.Value][]elements.Record)
	for idx := 0; idx < records.Len(); idx++ {
		rec := records.At(idx)
		key := rec.Lookup(attribute)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	partitions := make([]elements.Partition, len(order))
	for idx, key := range order {
		partitions[idx] = elements.Partition{
			Key:     key,
			Records: elements.NewRecordSet(groups[key]...),
		}
	}
	return partitions, nil
}
