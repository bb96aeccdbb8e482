package arrowops

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

const AggregateCountColumn = "count"

/*
* Convert a record set into a single arrow record using the given schema.
* Fields missing from a record are appended as nulls.
 */
func RecordSetToArrow(mem memory.Allocator, records elements.RecordSet, schema *arrow.Schema) (arrow.Record, error) {
	if schema.NumFields() == 0 {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("schema for %d records", records.Len())), ErrEmptySchema)
	}

	recBuilder := array.NewRecordBuilder(mem, schema)
	defer recBuilder.Release()
	recBuilder.Reserve(records.Len())

	for rowIdx := 0; rowIdx < records.Len(); rowIdx++ {
		rec := records.At(rowIdx)
		for colIdx, field := range schema.Fields() {
			err := appendValue(recBuilder.Field(colIdx), rec.Lookup(field.Name))
			if err != nil {
				return nil, errs.Wrap(err, fmt.Errorf("row: %d, column: %s", rowIdx, field.Name))
			}
		}
	}

	return recBuilder.NewRecord(), nil
}

func appendValue(bldr array.Builder, val elements.Value) error {
	if val.IsNull() {
		bldr.AppendNull()
		return nil
	}

	switch b := bldr.(type) {
	case *array.StringBuilder:
		b.Append(val.Text())
	case *array.Int64Builder:
		num, ok := val.Number()
		if !ok {
			return errs.Wrap(errs.NewStackError(fmt.Errorf("%s value in int64 column", val.Kind())), ErrUnsupportedDataType)
		}
		b.Append(int64(num))
	case *array.Float64Builder:
		num, ok := val.Number()
		if !ok {
			return errs.Wrap(errs.NewStackError(fmt.Errorf("%s value in float64 column", val.Kind())), ErrUnsupportedDataType)
		}
		b.Append(num)
	case *array.BooleanBuilder:
		v, ok := val.Bool()
		if !ok {
			return errs.Wrap(errs.NewStackError(fmt.Errorf("%s value in boolean column", val.Kind())), ErrUnsupportedDataType)
		}
		b.Append(v)
	default:
		return errs.Wrap(errs.NewStackError(fmt.Errorf("builder for %s", bldr.Type())), ErrUnsupportedDataType)
	}
	return nil
}

/*
* Convert aggregate rows into an arrow record with the columns
* (typeColumn, groupColumn, count). Null key values stay null.
 */
func AggregateRowsToArrow(mem memory.Allocator, rows []elements.AggregateRow, typeColumn, groupColumn string) (arrow.Record, error) {
	if typeColumn == groupColumn {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("duplicate aggregate column %s", typeColumn)), ErrSchemasNotEqual)
	}

	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: typeColumn, Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: groupColumn, Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: AggregateCountColumn, Type: arrow.PrimitiveTypes.Int64},
		}, nil,
	)

	recBuilder := array.NewRecordBuilder(mem, schema)
	defer recBuilder.Release()
	recBuilder.Reserve(len(rows))

	typeBldr := recBuilder.Field(0).(*array.StringBuilder)
	groupBldr := recBuilder.Field(1).(*array.StringBuilder)
	countBldr := recBuilder.Field(2).(*array.Int64Builder)
	for _, row := range rows {
		if err := appendValue(typeBldr, row.Type); err != nil {
			return nil, errs.Wrap(err)
		}
		if err := appendValue(groupBldr, row.Group); err != nil {
			return nil, errs.Wrap(err)
		}
		countBldr.Append(row.Count)
	}

	return recBuilder.NewRecord(), nil
}
