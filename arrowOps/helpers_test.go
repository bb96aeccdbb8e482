package arrowops

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

func mockData(mem memory.Allocator, size int) arrow.Record {
	rb := array.NewRecordBuilder(mem, arrow.NewSchema(
		[]arrow.Field{
			{Name: "a", Type: arrow.PrimitiveTypes.Uint32},
			{Name: "b", Type: arrow.PrimitiveTypes.Float32},
			{Name: "c", Type: arrow.BinaryTypes.String},
		}, nil))
	defer rb.Release()
	for i := 0; i < size; i++ {
		rb.Field(0).(*array.Uint32Builder).Append(uint32(i))
		rb.Field(1).(*array.Float32Builder).Append(float32(i))
		rb.Field(2).(*array.StringBuilder).Append("s")
	}
	return rb.NewRecord()
}

func mockBreweries() elements.RecordSet {
	return elements.NewRecordSet(
		elements.NewRecord(
			elements.Field{Name: "id", Value: elements.NumberValue(1)},
			elements.Field{Name: "name", Value: elements.StringValue("North Brew")},
			elements.Field{Name: "state", Value: elements.StringValue("CA")},
			elements.Field{Name: "brewery_type", Value: elements.StringValue("micro")},
		),
		elements.NewRecord(
			elements.Field{Name: "id", Value: elements.NumberValue(2)},
			elements.Field{Name: "name", Value: elements.StringValue("South Brew")},
			elements.Field{Name: "state", Value: elements.NullValue()},
			elements.Field{Name: "brewery_type", Value: elements.StringValue("micro")},
			elements.Field{Name: "latitude", Value: elements.NumberValue(34.5)},
		),
		elements.NewRecord(
			elements.Field{Name: "id", Value: elements.NumberValue(3)},
			elements.Field{Name: "state", Value: elements.StringValue("NY")},
			elements.Field{Name: "brewery_type", Value: elements.StringValue("large")},
			elements.Field{Name: "independent", Value: elements.BoolValue(true)},
		),
	)
}

func stringColumn(rec arrow.Record, name string) []*string {
	idxs := rec.Schema().FieldIndices(name)
	if len(idxs) != 1 {
		return nil
	}
	arr := rec.Column(idxs[0]).(*array.String)
	values := make([]*string, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		v := arr.Value(i)
		values[i] = &v
	}
	return values
}

func strPtr(s string) *string { return &s }
