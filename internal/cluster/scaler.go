package cluster

import (
	"github.com/JaimeStill/segmenter/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FitScaler computes per-column mean and population standard deviation.
// A zero deviation is replaced by 1 so constant columns map to 0.
func FitScaler(X mat.Matrix) *model.Scaler {
	r, c := X.Dims()

	s := &model.Scaler{
		Mean:  make([]float64, c),
		Scale: make([]float64, c),
	}

	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}

	return s
}
