package features

import (
	"fmt"
	"math"
	"time"
)

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Options configures Process.
type Options struct {
	AnalysisDate   time.Time
	OutlierColumns []string
	IQRThreshold   float64
}

// Merge sums the online and offline channels and parses the four date fields.
func Merge(records []Record) ([]Customer, error) {
	customers := make([]Customer, len(records))

	for i, rec := range records {
		c := Customer{
			MasterID:   rec.MasterID,
			TotalOrder: rec.OrderNumOnline + rec.OrderNumOffline,
			TotalPrice: rec.ValueOnline + rec.ValueOffline,
		}

		dates := []struct {
			name  string
			value string
			dest  *time.Time
		}{
			{colFirstOrderDate, rec.FirstOrderDate, &c.FirstOrder},
			{colLastOrderDate, rec.LastOrderDate, &c.LastOrder},
			{colLastOrderDateOnline, rec.LastOrderDateOnline, &c.LastOrderOnline},
			{colLastOrderDateOffline, rec.LastOrderDateOffline, &c.LastOrderOffline},
		}

		for _, d := range dates {
			t, err := ParseDate(d.value)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: customer %s: %s: %q", ErrDataFormat, rec.Line, rec.MasterID, d.name, d.value)
			}
			*d.dest = t
		}

		customers[i] = c
	}

	return customers, nil
}

// ParseDate parses a calendar date with an optional time part.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Days returns the whole days from t to ref, floored.
func Days(ref, t time.Time) int {
	return int(math.Floor(ref.Sub(t).Hours() / 24))
}

// Derive projects customers to RFM rows relative to analysisDate and applies
// log1p. A negative raw feature is rejected.
func Derive(customers []Customer, analysisDate time.Time) ([]RFM, error) {
	rows := make([]RFM, len(customers))

	for i, c := range customers {
		r := RFM{
			MasterID:  c.MasterID,
			Recency:   Days(analysisDate, c.LastOrder),
			Frequency: c.TotalOrder,
			Monetary:  c.TotalPrice,
			Tenure:    Days(analysisDate, c.FirstOrder),
		}

		raw := []struct {
			name  string
			value float64
		}{
			{"Recency", float64(r.Recency)},
			{"Frequency", r.Frequency},
			{"Monetary", r.Monetary},
			{"Tenure", float64(r.Tenure)},
		}
		for _, f := range raw {
			if f.value < 0 || math.IsNaN(f.value) {
				return nil, fmt.Errorf("%w: customer %s: %s is %v", ErrDataFormat, c.MasterID, f.name, f.value)
			}
		}

		r.LogRecency = math.Log1p(float64(r.Recency))
		r.LogFrequency = math.Log1p(r.Frequency)
		r.LogMonetary = math.Log1p(r.Monetary)
		r.LogTenure = math.Log1p(float64(r.Tenure))

		rows[i] = r
	}

	return rows, nil
}

// Result is the output of Process.
type Result struct {
	Rows    []RFM
	Bounds  []Bounds
	Dropped int
}

// Process runs merge, date parsing, outlier removal, derivation and the log transform.
func Process(records []Record, opts Options) (*Result, error) {
	customers, err := Merge(records)
	if err != nil {
		return nil, err
	}

	kept, bounds, err := RemoveOutliers(customers, opts.OutlierColumns, opts.IQRThreshold)
	if err != nil {
		return nil, err
	}

	rows, err := Derive(kept, opts.AnalysisDate)
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:    rows,
		Bounds:  bounds,
		Dropped: len(customers) - len(kept),
	}, nil
}
