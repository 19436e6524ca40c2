package segments

import "github.com/JaimeStill/segmenter/pkg/openapi"

func positive() *float64 {
	var zero float64
	return &zero
}

// Schemas returns the component schemas referenced by prediction operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"PredictionRequest": {
			Type:     "object",
			Required: []string{"recency_days", "total_orders", "total_price", "tenure_days"},
			Properties: map[string]*openapi.Schema{
				"recency_days": {Type: "integer", Description: "Days since the last purchase", ExclusiveMinimum: positive(), Example: 30},
				"total_orders": {Type: "integer", Description: "Total number of orders", ExclusiveMinimum: positive(), Example: 5},
				"total_price":  {Type: "number", Description: "Total spending amount", ExclusiveMinimum: positive(), Example: 2500.50},
				"tenure_days":  {Type: "integer", Description: "Days since the first purchase", ExclusiveMinimum: positive(), Example: 500},
			},
		},
		"Prediction": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"cluster_id":    {Type: "integer", Description: "Assigned cluster index"},
				"cluster_name":  {Type: "string", Description: "Business segment name"},
				"model_version": {Type: "string", Description: "Version tag of the serving model"},
			},
		},
		"ModelMetadata": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":              {Type: "string"},
				"version":           {Type: "string"},
				"run_id":            {Type: "string", Format: "uuid"},
				"k":                 {Type: "integer"},
				"features":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"silhouette":        {Type: "number"},
				"calinski_harabasz": {Type: "number"},
				"samples":           {Type: "integer"},
				"created_at":        {Type: "string", Format: "date-time"},
			},
		},
	}
}

var predictOp = &openapi.Operation{
	Summary:     "Predict customer segment",
	Description: "Applies the log1p feature transform and the loaded model to one customer. All fields must be strictly positive.",
	RequestBody: openapi.RequestBodyJSON("PredictionRequest", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Assigned segment", "Prediction"),
		400: openapi.ResponseRef("BadRequest"),
		500: openapi.ResponseRef("InternalError"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var modelOp = &openapi.Operation{
	Summary: "Describe the serving model",
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Loaded model metadata", "ModelMetadata"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}
