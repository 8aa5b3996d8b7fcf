package tableio

import (
	"errors"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

// WriteParquet writes rows, structs with parquet tags, to a Snappy
// compressed Parquet file.
func WriteParquet[T any](path string, rows []T) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, output.Close())
	}()

	schema := parquet.SchemaOf(new(T))
	writer := parquet.NewGenericWriter[T](output, schema, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(rows); err != nil {
		return errors.Join(err, writer.Close())
	}
	if err := writer.Close(); err != nil {
		return err
	}
	logrus.Infof("Wrote %d rows to %s", len(rows), path)
	return nil
}

// ReadParquet reads every row of a Parquet file written by WriteParquet.
func ReadParquet[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
