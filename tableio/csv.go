// Package tableio reads and writes the flat tables exchanged between
// pipeline stages.
package tableio

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

// ReadCSV decodes the csv file at path into out, a pointer to a slice of
// structs with csv tags.
func ReadCSV(path string, out any) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return gocsv.UnmarshalFile(f, out)
}

// ReadCSVLowerHeader is ReadCSV with header names lower-cased before they
// are matched against the csv tags.
func ReadCSVLowerHeader(path string, out any) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return gocsv.UnmarshalCSV(&lowerHeaderReader{Reader: csv.NewReader(f)}, out)
}

type lowerHeaderReader struct {
	*csv.Reader
	seenHeader bool
}

func (r *lowerHeaderReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil || r.seenHeader {
		return record, err
	}
	r.seenHeader = true
	for i, name := range record {
		record[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return record, nil
}

func (r *lowerHeaderReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// WriteCSV encodes rows, a slice of structs with csv tags, to path.
func WriteCSV(path string, rows any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return err
	}
	logrus.Infof("Wrote %s", path)
	return f.Sync()
}

// Write stores rows as Parquet when path ends in .parquet and as csv
// otherwise.
func Write[T any](path string, rows []T) error {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return WriteParquet(path, rows)
	}
	return WriteCSV(path, rows)
}
