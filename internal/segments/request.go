package segments

import (
	"fmt"
	"math"

	"github.com/JaimeStill/segmenter/pkg/validation"
)

// Request is a single customer's raw RFM+Tenure values.
type Request struct {
	RecencyDays int     `json:"recency_days" validate:"gt=0"`
	TotalOrders int     `json:"total_orders" validate:"gt=0"`
	TotalPrice  float64 `json:"total_price" validate:"gt=0"`
	TenureDays  int     `json:"tenure_days" validate:"gt=0"`
}

// Validate checks that every field is strictly positive and that
// TotalPrice is finite.
func (r Request) Validate() error {
	if math.IsNaN(r.TotalPrice) || math.IsInf(r.TotalPrice, 0) {
		return fmt.Errorf("%w: total_price must be a finite number, got %v", ErrValidation, r.TotalPrice)
	}
	if err := validation.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// Features returns the model input row: log1p of recency, orders, price and
// tenure, in model.FeatureColumns order.
func Features(r Request) [4]float64 {
	return [4]float64{
		math.Log1p(float64(r.RecencyDays)),
		math.Log1p(float64(r.TotalOrders)),
		math.Log1p(r.TotalPrice),
		math.Log1p(float64(r.TenureDays)),
	}
}

// Prediction is the segment assigned to a Request.
type Prediction struct {
	ClusterID    int    `json:"cluster_id"`
	ClusterName  string `json:"cluster_name"`
	ModelVersion string `json:"model_version"`
}
