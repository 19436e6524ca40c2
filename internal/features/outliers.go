package features

import (
	"fmt"
	"math"
	"slices"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks: with sorted x and h = (n-1)q, the result is
// x[⌊h⌋] + (h-⌊h⌋)(x[⌊h⌋+1]-x[⌊h⌋]). NaN for empty input.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Bounds are the inclusive IQR fences for one column.
type Bounds struct {
	Column string
	Q1     float64
	Q3     float64
	Lower  float64
	Upper  float64
}

// IQRBounds computes Q1, Q3 and the fences Q1 - t*IQR and Q3 + t*IQR.
func IQRBounds(column string, values []float64, threshold float64) Bounds {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1

	return Bounds{
		Column: column,
		Q1:     q1,
		Q3:     q3,
		Lower:  q1 - threshold*iqr,
		Upper:  q3 + threshold*iqr,
	}
}

// RemoveOutliers filters customers column by column, in the given order.
// Each column's quartiles are computed on the rows that survived the previous
// columns, so the result depends on column order.
func RemoveOutliers(customers []Customer, columns []string, threshold float64) ([]Customer, []Bounds, error) {
	for _, col := range columns {
		if !knownColumn(col) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
	}

	kept := slices.Clone(customers)
	bounds := make([]Bounds, 0, len(columns))

	for _, col := range columns {
		values := make([]float64, len(kept))
		for i, c := range kept {
			values[i], _ = c.Value(col)
		}

		b := IQRBounds(col, values, threshold)
		bounds = append(bounds, b)

		kept = slices.DeleteFunc(kept, func(c Customer) bool {
			v, _ := c.Value(col)
			return v < b.Lower || v > b.Upper
		})
	}

	return kept, bounds, nil
}
