package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadSeries reads the one-column series file <dir>/<column>.csv. A leading
// non-numeric row is treated as a header and skipped.
func ReadSeries(dir, column string) ([]float64, error) {
	path := filepath.Join(dir, column+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := readSeriesColumn(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func readSeriesColumn(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 1

	var values []float64
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++

		field := strings.TrimSpace(record[0])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if row == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("row %d: parse %q: %w", row, field, err)
		}
		values = append(values, v)
	}
	return values, nil
}
