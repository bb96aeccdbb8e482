package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/require"

	arrowops "github.com/alekLukanen/BreweryMedallion/arrowOps"
	"github.com/alekLukanen/BreweryMedallion/elements"
)

func testLogger() *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(
			os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug},
		),
	)
}

// memorySink keeps every written artifact as parquet bytes keyed by the
// logical path. Keys in failKeys return the error, keys in panicKeys panic.
type memorySink struct {
	mu sync.Mutex

	failKeys  map[string]error
	panicKeys map[string]bool

	objects map[string][]byte
	keys    []string
}

func newMemorySink() *memorySink {
	return &memorySink{
		failKeys:  make(map[string]error),
		panicKeys: make(map[string]bool),
		objects:   make(map[string][]byte),
	}
}

func (obj *memorySink) Write(ctx context.Context, record arrow.Record, key string) (elements.LayerArtifact, error) {
	if obj.panicKeys[key] {
		panic(fmt.Sprintf("sink exploded on %s", key))
	}
	if err, ok := obj.failKeys[key]; ok {
		return elements.LayerArtifact{}, err
	}

	data, err := arrowops.WriteRecordToParquetBytes(ctx, record)
	if err != nil {
		return elements.LayerArtifact{}, err
	}

	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.objects[key] = data
	obj.keys = append(obj.keys, key)
	return elements.LayerArtifact{Key: key, NumRows: record.NumRows(), NumBytes: len(data)}, nil
}

func (obj *memorySink) read(t *testing.T, mem memory.Allocator, key string) arrow.Record {
	t.Helper()
	obj.mu.Lock()
	data, ok := obj.objects[key]
	obj.mu.Unlock()
	require.Truef(t, ok, "object %s was not written", key)

	rec, err := arrowops.ReadParquetBytesToRecord(context.Background(), mem, data)
	require.NoError(t, err)
	return rec
}

func brewery(id, name, breweryType, state string) elements.Record {
	return elements.NewRecord(
		elements.Field{Name: "id", Value: elements.StringValue(id)},
		elements.Field{Name: "name", Value: elements.StringValue(name)},
		elements.Field{Name: "brewery_type", Value: elements.StringValue(breweryType)},
		elements.Field{Name: "state", Value: elements.StringValue(state)},
	)
}

func threeBreweries() elements.RecordSet {
	return elements.NewRecordSet(
		brewery("1", "A", "micro", "CA"),
		brewery("2", "B", "micro", "CA"),
		brewery("3", "C", "large", "NY"),
	)
}

func fourStates() elements.RecordSet {
	return elements.NewRecordSet(
		brewery("1", "A", "micro", "CA"),
		brewery("2", "B", "brewpub", "NY"),
		brewery("3", "C", "micro", "TX"),
		brewery("4", "D", "large", "OR"),
		brewery("5", "E", "micro", "CA"),
	)
}

func newTestPipeline(t *testing.T, sink *memorySink, options PipelineOptions) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(
		testLogger(),
		memory.NewGoAllocator(),
		sink,
		elements.NewDataset("breweries"),
		options,
	)
	require.NoError(t, err)
	return pipeline
}

func stringValues(t *testing.T, rec arrow.Record, column string) []string {
	t.Helper()
	indices := rec.Schema().FieldIndices(column)
	require.Lenf(t, indices, 1, "column %s", column)
	col, ok := rec.Column(indices[0]).(*array.String)
	require.Truef(t, ok, "column %s is not a string column", column)

	res := make([]string, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			res[i] = "<null>"
			continue
		}
		res[i] = col.Value(i)
	}
	return res
}

func int64Values(t *testing.T, rec arrow.Record, column string) []int64 {
	t.Helper()
	indices := rec.Schema().FieldIndices(column)
	require.Lenf(t, indices, 1, "column %s", column)
	col, ok := rec.Column(indices[0]).(*array.Int64)
	require.Truef(t, ok, "column %s is not an int64 column", column)
	return col.Int64Values()
}
