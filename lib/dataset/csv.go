package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCSV writes a header row followed by one row per record, missing cells
// as MissingText.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	err := writer.Write(t.columns)
	if err != nil {
		return err
	}
	err = writer.WriteAll(t.Records())
	if err != nil {
		return err
	}
	return writer.Error()
}

// WriteCSVFile writes the table to `path`, creating parent directories. The
// file is written to a temporary name first so a failed run leaves no
// partial output behind.
func WriteCSVFile(path string, t Table) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = WriteCSV(tmp, t)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadCSV reads a table written by WriteCSV, MissingText becomes NA.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, errors.New("csv has no header row")
	}

	rows := make([][]Cell, len(records)-1)
	for i, record := range records[1:] {
		row := make([]Cell, len(record))
		for j, text := range record {
			if text == MissingText {
				row[j] = NA
				continue
			}
			row[j] = Value(text)
		}
		rows[i] = row
	}
	return New(records[0], rows)
}

func ReadCSVFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}
