// Package features turns raw omnichannel customer records into RFM+Tenure
// feature rows: merge, date parsing, IQR outlier removal, derivation,
// projection and log1p transform.
package features

import "time"

// DateLayout is the calendar date format of source dates and the analysis date.
const DateLayout = "2006-01-02"

// Monitored outlier columns.
const (
	ColumnTotalOrder = "total_order"
	ColumnTotalPrice = "total_price"
)

// Source CSV columns.
const (
	colMasterID             = "master_id"
	colOrderNumOnline       = "order_num_total_ever_online"
	colOrderNumOffline      = "order_num_total_ever_offline"
	colValueOnline          = "customer_value_total_ever_online"
	colValueOffline         = "customer_value_total_ever_offline"
	colFirstOrderDate       = "first_order_date"
	colLastOrderDate        = "last_order_date"
	colLastOrderDateOnline  = "last_order_date_online"
	colLastOrderDateOffline = "last_order_date_offline"
)

// LogColumns is the model feature order: the log1p features in the order
// every consumer of the processed table expects them.
var LogColumns = []string{"log_Recency", "log_Frequency", "log_Monetary", "log_Tenure"}

// Header is the processed table header.
var Header = []string{
	"master_id", "Recency", "Frequency", "Monetary", "Tenure",
	"log_Recency", "log_Frequency", "log_Monetary", "log_Tenure",
}

// Record is one raw customer row. Dates are kept as read and parsed by Merge.
type Record struct {
	Line                 int
	MasterID             string
	OrderNumOnline       float64
	OrderNumOffline      float64
	ValueOnline          float64
	ValueOffline         float64
	FirstOrderDate       string
	LastOrderDate        string
	LastOrderDateOnline  string
	LastOrderDateOffline string
}

// Customer is a record after the omnichannel merge and date parsing.
type Customer struct {
	MasterID         string
	TotalOrder       float64
	TotalPrice       float64
	FirstOrder       time.Time
	LastOrder        time.Time
	LastOrderOnline  time.Time
	LastOrderOffline time.Time
}

// Value returns the customer's value for a monitored column.
func (c Customer) Value(column string) (float64, bool) {
	switch column {
	case ColumnTotalOrder:
		return c.TotalOrder, true
	case ColumnTotalPrice:
		return c.TotalPrice, true
	}
	return 0, false
}

// RFM is a projected feature row with its log1p variants.
type RFM struct {
	MasterID     string
	Recency      int
	Frequency    float64
	Monetary     float64
	Tenure       int
	LogRecency   float64
	LogFrequency float64
	LogMonetary  float64
	LogTenure    float64
}

// LogVector returns the log features in LogColumns order.
func (r RFM) LogVector() []float64 {
	return []float64{r.LogRecency, r.LogFrequency, r.LogMonetary, r.LogTenure}
}

func knownColumn(column string) bool {
	_, ok := Customer{}.Value(column)
	return ok
}
