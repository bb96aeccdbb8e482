package arrowops

import (
	"github.com/apache/arrow/go/v17/arrow"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

/*
* Build the schema for a record set from the union of its fields. The type of
* each column is inferred from its non-null values:
*   - all bool                        -> boolean
*   - all numbers, all integral       -> int64
*   - all numbers                     -> float64
*   - anything else, or only nulls    -> string
* When the record set has no fields at all the fallback column names are used
* as nullable strings so that the schema is never empty.
 */
func RecordSetSchema(records elements.RecordSet, fallbackColumns ...string) *arrow.Schema {
	columns := records.Columns()
	if len(columns) == 0 {
		columns = fallbackColumns
	}

	fields := make([]arrow.Field, len(columns))
	for idx, column := range columns {
		fields[idx] = arrow.Field{
			Name:     column,
			Type:     inferColumnType(records, column),
			Nullable: true,
		}
	}
	return arrow.NewSchema(fields, nil)
}

func inferColumnType(records elements.RecordSet, column string) arrow.DataType {
	var numNumbers, numIntegers, numBools, numOther int
	for idx := 0; idx < records.Len(); idx++ {
		val := records.At(idx).Lookup(column)
		switch val.Kind() {
		case elements.KindNull:
			continue
		case elements.KindNumber:
			numNumbers++
			if val.IsInteger() {
				numIntegers++
			}
		case elements.KindBool:
			numBools++
		default:
			numOther++
		}
	}

	switch {
	case numOther > 0:
		return arrow.BinaryTypes.String
	case numBools > 0 && numNumbers == 0:
		return arrow.FixedWidthTypes.Boolean
	case numNumbers > 0 && numBools == 0 && numIntegers == numNumbers:
		return arrow.PrimitiveTypes.Int64
	case numNumbers > 0 && numBools == 0:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}
