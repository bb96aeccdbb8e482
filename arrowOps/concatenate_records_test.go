package arrowops

import (
	"errors"
	"fmt"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func TestConcatenateRecords(t *testing.T) {

	mem := memory.NewGoAllocator()

	testCases := []struct {
		records        []arrow.Record
		expectedRecord arrow.Record
		expectedErr    error
	}{
		{
			records:        []arrow.Record{mockData(mem, 10)},
			expectedRecord: mockData(mem, 10),
			expectedErr:    nil,
		},
		{
			records: func() []arrow.Record {
				rb1 := array.NewRecordBuilder(mem, arrow.NewSchema(
					[]arrow.Field{
						{Name: "a", Type: arrow.PrimitiveTypes.Uint32},
						{Name: "c", Type: arrow.BinaryTypes.String},
					}, nil))
				defer rb1.Release()
				rb1.Field(0).(*array.Uint32Builder).AppendValues([]uint32{0, 1, 2}, nil)
				rb1.Field(1).(*array.StringBuilder).AppendValues([]string{"s0", "s1", "s2"}, nil)
				rec1 := rb1.NewRecord()
				rb1.Field(0).(*array.Uint32Builder).AppendValues([]uint32{3}, nil)
				rb1.Field(1).(*array.StringBuilder).AppendValues([]string{"s3"}, nil)
				rec2 := rb1.NewRecord()
				return []arrow.Record{rec1, rec2}
			}(),
			expectedRecord: func() arrow.Record {
				rb1 := array.NewRecordBuilder(mem, arrow.NewSchema(
					[]arrow.Field{
						{Name: "a", Type: arrow.PrimitiveTypes.Uint32},
						{Name: "c", Type: arrow.BinaryTypes.String},
					}, nil))
				defer rb1.Release()
				rb1.Field(0).(*array.Uint32Builder).AppendValues([]uint32{0, 1, 2, 3}, nil)
				rb1.Field(1).(*array.StringBuilder).AppendValues([]string{"s0", "s1", "s2", "s3"}, nil)
				return rb1.NewRecord()
			}(),
		},
		{
			records:     []arrow.Record{mockData(mem, 2), mockBreweriesRecord(mem)},
			expectedErr: ErrSchemasNotEqual,
		},
		{
			records:     []arrow.Record{},
			expectedErr: ErrNoDataLeft,
		},
	}

	for idx, testCase := range testCases {
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {

			result, err := ConcatenateRecords(mem, testCase.records...)
			if !errors.Is(err, testCase.expectedErr) {
				t.Errorf("expected error '%s' but received '%s'", testCase.expectedErr, err)
				return
			}
			if testCase.expectedErr != nil {
				return
			}
			defer result.Release()
			if !array.RecordEqual(testCase.expectedRecord, result) {
				t.Log(result)
				t.Error("result record does not match the expected record")
			}

		})
	}

}

func mockBreweriesRecord(mem memory.Allocator) arrow.Record {
	records := mockBreweries()
	rec, err := RecordSetToArrow(mem, records, RecordSetSchema(records))
	if err != nil {
		panic(err)
	}
	return rec
}
