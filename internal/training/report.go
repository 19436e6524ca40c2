package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JaimeStill/segmenter/internal/features"
)

// ReportHeader is the processed table header followed by the cluster column.
var ReportHeader = append(append([]string{}, features.Header...), "cluster")

// WriteReport encodes the processed rows with their cluster, numbered from 1.
func WriteReport(w io.Writer, rows []features.RFM, labels []int) error {
	if len(rows) != len(labels) {
		return fmt.Errorf("report: %d rows, %d labels", len(rows), len(labels))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}

	record := make([]string, len(ReportHeader))
	for i, r := range rows {
		record[0] = r.MasterID
		record[1] = strconv.Itoa(r.Recency)
		record[2] = features.FormatFloat(r.Frequency)
		record[3] = features.FormatFloat(r.Monetary)
		record[4] = strconv.Itoa(r.Tenure)
		record[5] = features.FormatFloat(r.LogRecency)
		record[6] = features.FormatFloat(r.LogFrequency)
		record[7] = features.FormatFloat(r.LogMonetary)
		record[8] = features.FormatFloat(r.LogTenure)
		record[9] = strconv.Itoa(labels[i] + 1)

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportReport writes the cluster report to path, creating parent directories.
func ExportReport(path string, rows []features.RFM, labels []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteReport(f, rows, labels); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
