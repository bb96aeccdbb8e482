package arrowops

import (
	"slices"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// RecordsEqual compares the named columns of both records. With no
// column names the whole records are compared, schema included.
func RecordsEqual(rec1, rec2 arrow.Record, fields ...string) bool {
	if len(fields) == 0 {
		return array.RecordEqual(rec1, rec2)
	}
	if rec1.NumRows() != rec2.NumRows() {
		return false
	}
	for i := 0; i < int(rec1.NumCols()); i++ {
		columnName := rec1.ColumnName(i)
		if !slices.Contains(fields, columnName) {
			continue
		}
		otherIdxs := rec2.Schema().FieldIndices(columnName)
		if len(otherIdxs) != 1 {
			return false
		}
		if !array.Equal(rec1.Column(i), rec2.Column(otherIdxs[0])) {
			return false
		}
	}
	return true
}
