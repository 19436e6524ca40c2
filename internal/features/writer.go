package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Write encodes rows as CSV with the processed table Header. Floats use the
// shortest representation that round-trips, so equal input gives equal bytes.
func Write(w io.Writer, rows []RFM) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	record := make([]string, len(Header))
	for _, r := range rows {
		record[0] = r.MasterID
		record[1] = strconv.Itoa(r.Recency)
		record[2] = FormatFloat(r.Frequency)
		record[3] = FormatFloat(r.Monetary)
		record[4] = strconv.Itoa(r.Tenure)
		record[5] = FormatFloat(r.LogRecency)
		record[6] = FormatFloat(r.LogFrequency)
		record[7] = FormatFloat(r.LogMonetary)
		record[8] = FormatFloat(r.LogTenure)

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export writes rows to path, creating parent directories.
func Export(path string, rows []RFM) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// FormatFloat formats v in its shortest round-trip decimal form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Matrix returns the log features of rows as an n×4 matrix in LogColumns order.
func Matrix(rows []RFM) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}

	m := mat.NewDense(len(rows), len(LogColumns), nil)
	for i, r := range rows {
		m.SetRow(i, r.LogVector())
	}
	return m
}
