package arrowops

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	parquetFileUtils "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

type ParquetFile struct {
	FilePath string
	NumRows  int64
}

func parquetWriterProperties() (*parquet.WriterProperties, pqarrow.ArrowWriterProperties) {
	parquetWriteProps := parquet.NewWriterProperties(
		parquet.WithStats(true),
		parquet.WithCompression(compress.Codecs.Snappy),
	)
	arrowWriteProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	return parquetWriteProps, arrowWriteProps
}

func WriteRecordToParquet(ctx context.Context, record arrow.Record, w io.Writer) error {
	parquetWriteProps, arrowWriteProps := parquetWriterProperties()
	parquetFileWriter, err := pqarrow.NewFileWriter(record.Schema(), w, parquetWriteProps, arrowWriteProps)
	if err != nil {
		return errs.Wrap(err)
	}

	if err := parquetFileWriter.Write(record); err != nil {
		_ = parquetFileWriter.Close()
		return errs.Wrap(err)
	}

	// close flushes the footer, the file is not valid until then
	if err := parquetFileWriter.Close(); err != nil {
		return errs.Wrap(err)
	}
	return nil
}

/*
* Encode the record as a complete parquet file in memory. The encoding does
* not embed any timestamps so the same record always produces the same bytes.
 */
func WriteRecordToParquetBytes(ctx context.Context, record arrow.Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WriteRecordToParquet(ctx, record, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteRecordToParquetFile(ctx context.Context, record arrow.Record, filePath string) (ParquetFile, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return ParquetFile{}, errs.Wrap(err)
	}
	defer file.Close()

	if err := WriteRecordToParquet(ctx, record, file); err != nil {
		return ParquetFile{}, err
	}
	return ParquetFile{FilePath: filePath, NumRows: record.NumRows()}, nil
}

func ReadParquetFile(ctx context.Context, mem memory.Allocator, filePath string) ([]arrow.Record, error) {
	parquetFileReader, err := parquetFileUtils.OpenParquetFile(filePath, false)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer parquetFileReader.Close()

	_, records, err := readParquet(ctx, mem, parquetFileReader)
	return records, err
}

func ReadParquetBytes(ctx context.Context, mem memory.Allocator, data []byte) ([]arrow.Record, error) {
	parquetFileReader, err := parquetFileUtils.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer parquetFileReader.Close()

	_, records, err := readParquet(ctx, mem, parquetFileReader)
	return records, err
}

/*
* Read the parquet bytes into a single record. A file without any rows
* produces an empty record with the file's schema.
 */
func ReadParquetBytesToRecord(ctx context.Context, mem memory.Allocator, data []byte) (arrow.Record, error) {
	parquetFileReader, err := parquetFileUtils.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer parquetFileReader.Close()

	schema, records, err := readParquet(ctx, mem, parquetFileReader)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return EmptyRecord(mem, schema), nil
	}
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	return ConcatenateRecords(mem, records...)
}

func readParquet(ctx context.Context, mem memory.Allocator, parquetFileReader *parquetFileUtils.Reader) (*arrow.Schema, []arrow.Record, error) {
	parquetReadProps := pqarrow.ArrowReadProperties{
		BatchSize: 1 << 16,
	}
	arrowFileReader, err := pqarrow.NewFileReader(parquetFileReader, parquetReadProps, mem)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}

	schema, err := arrowFileReader.Schema()
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}

	recordReader, err := arrowFileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}
	defer recordReader.Release()

	records := make([]arrow.Record, 0)
	for recordReader.Next() {
		rec := recordReader.Record()
		// the reader reuses the record on the next call
		rec.Retain()
		records = append(records, rec)
	}
	if err := recordReader.Err(); err != nil && err != io.EOF {
		for _, rec := range records {
			rec.Release()
		}
		return nil, nil, errs.Wrap(err)
	}

	return schema, records, nil
}
