package features

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

var requiredColumns = []string{
	colMasterID,
	colOrderNumOnline,
	colOrderNumOffline,
	colValueOnline,
	colValueOffline,
	colFirstOrderDate,
	colLastOrderDate,
	colLastOrderDateOnline,
	colLastOrderDateOffline,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads raw customer records from the CSV file at path.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses raw customer records from CSV. Columns are matched by header
// name; columns other than the required ones are ignored.
func Read(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty source", ErrDataFormat)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrDataFormat, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataFormat, col)
		}
	}

	records := make([]Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataFormat, err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRecord(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string, index map[string]int, line int) (Record, error) {
	field := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	number := func(col string) (float64, error) {
		v, err := strconv.ParseFloat(field(col), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: %s: %q is not a number", ErrDataFormat, line, col, field(col))
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: line %d: %s: %v must be a finite non-negative number", ErrDataFormat, line, col, v)
		}
		return v, nil
	}

	rec := Record{
		Line:                 line,
		MasterID:             field(colMasterID),
		FirstOrderDate:       field(colFirstOrderDate),
		LastOrderDate:        field(colLastOrderDate),
		LastOrderDateOnline:  field(colLastOrderDateOnline),
		LastOrderDateOffline: field(colLastOrderDateOffline),
	}

	var err error
	if rec.OrderNumOnline, err = number(colOrderNumOnline); err != nil {
		return Record{}, err
	}
	if rec.OrderNumOffline, err = number(colOrderNumOffline); err != nil {
		return Record{}, err
	}
	if rec.ValueOnline, err = number(colValueOnline); err != nil {
		return Record{}, err
	}
	if rec.ValueOffline, err = number(colValueOffline); err != nil {
		return Record{}, err
	}

	return rec, nil
}
