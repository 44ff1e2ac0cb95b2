package table

import (
	"bytes"
	"fmt"
	"io"

	parquet "github.com/parquet-go/parquet-go"
)

// WriteParquet writes rows with the schema derived from T, snappy compressed.
func WriteParquet[T any](w io.Writer, rows []T) error {
	pw := parquet.NewWriter(w, parquet.SchemaOf(new(T)), parquet.Compression(&parquet.Snappy))
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.Close()
			return err
		}
	}
	return pw.Close()
}

func ReadParquet[T any](r io.ReaderAt, size int64) ([]T, error) {
	rows, err := parquet.Read[T](r, size)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// Encode renders rows in both formats.
func Encode[T any](rows []T) (csvBody, parquetBody []byte, err error) {
	var c, p bytes.Buffer
	if err := WriteCSV(&c, rows); err != nil {
		return nil, nil, fmt.Errorf("csv: %w", err)
	}
	if err := WriteParquet(&p, rows); err != nil {
		return nil, nil, fmt.Errorf("parquet: %w", err)
	}
	return c.Bytes(), p.Bytes(), nil
}

// Decode reads a table body, choosing the format by name suffix.
func Decode[T any](name string, body []byte) ([]T, error) {
	switch Format(name) {
	case "parquet":
		return ReadParquet[T](bytes.NewReader(body), int64(len(body)))
	case "csv":
		return ReadCSV[T](bytes.NewReader(body))
	}
	return nil, fmt.Errorf("%s: unknown table format", name)
}

// Format is "csv", "parquet" or "" judging by the file extension.
func Format(name string) string {
	switch {
	case hasSuffixFold(name, ".parquet"):
		return "parquet"
	case hasSuffixFold(name, ".csv"):
		return "csv"
	}
	return ""
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && bytes.EqualFold([]byte(s[len(s)-len(suffix):]), []byte(suffix))
}
