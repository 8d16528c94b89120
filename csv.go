package harperdb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// UpsertFromCSV reads a CSV file whose first row names the fields and
// upserts one record per remaining row. Values are sent as strings.
func (t *Table) UpsertFromCSV(ctx context.Context, path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return t.UpsertFromReader(ctx, f)
}

// UpsertFromReader is UpsertFromCSV for CSV data read from r.
func (t *Table) UpsertFromReader(ctx context.Context, r io.Reader) ([]*Record, error) {
	records, err := readCSVRows(r)
	if err != nil {
		return nil, err
	}
	return t.Upsert(ctx, records...)
}

func readCSVRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
