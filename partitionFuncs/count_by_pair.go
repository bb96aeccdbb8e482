package partitionFuncs

import (
	"fmt"

	"github.com/alekLukanen/errs"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

type pairKey struct {
	typeValue  elements.Value
	groupValue elements.Value
}

/*
* Count the records for every distinct (type, group) combination in a single
* pass. Rows come out in the order each combination first appears and only
* combinations that occur are returned.
 */
func CountByPair(records elements.RecordSet, typeAttribute, groupAttribute string) ([]elements.AggregateRow, error) {
	if typeAttribute == "" || groupAttribute == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("aggregate attributes must be set")), ErrInvalidPartitionOptions)
	}

	rows := make([]elements.AggregateRow, 0)
	rowIdx := make(map[pairKey]int)
	for idx := 0; idx < records.Len(); idx++ {
		rec := records.At(idx)
		key := pairKey{
			typeValue:  rec.Lookup(typeAttribute),
			groupValue: rec.Lookup(groupAttribute),
		}
		if i, ok := rowIdx[key]; ok {
			rows[i].Count++
			continue
		}
		rowIdx[key] = len(rows)
		rows = append(rows, elements.AggregateRow{
			Type:  key.typeValue,
			Group: key.groupValue,
			Count: 1,
		})
	}
	return rows, nil
}
