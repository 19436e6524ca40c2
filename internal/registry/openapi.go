package registry

import "github.com/JaimeStill/segmenter/pkg/openapi"

// Schemas returns the component schemas referenced by registry operations.
func Schemas() map[string]*openapi.Schema {
	stages := make([]any, len(Stages))
	for i, s := range Stages {
		stages[i] = string(s)
	}

	return map[string]*openapi.Schema{
		"ModelVersion": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"name":              {Type: "string"},
				"version":           {Type: "integer"},
				"stage":             {Type: "string", Enum: stages},
				"run_id":            {Type: "string", Format: "uuid"},
				"storage_key":       {Type: "string"},
				"k":                 {Type: "integer"},
				"silhouette":        {Type: "number"},
				"calinski_harabasz": {Type: "number"},
				"params":            {Type: "object", Additional: &openapi.Schema{}},
				"created_at":        {Type: "string", Format: "date-time"},
			},
		},
		"ModelVersionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("ModelVersion")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"StageCommand": {
			Type:     "object",
			Required: []string{"stage"},
			Properties: map[string]*openapi.Schema{
				"stage": {Type: "string", Enum: stages},
			},
		},
	}
}

var (
	nameParam    = openapi.PathParam("name", "string", "Registered model name")
	versionParam = openapi.PathParam("version", "integer", "Version number")
)

var listOp = &openapi.Operation{
	Summary: "List model versions",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)", false).Min(1),
		openapi.QueryParam("page_size", "integer", "Results per page", false).Min(1),
		openapi.QueryParam("sort", "string", "Sort fields, e.g. -Version", false),
		openapi.QueryParam("name", "string", "Exact model name", false),
		openapi.QueryParam("stage", "string", "Lifecycle stages, comma-separated", false),
		openapi.QueryParam("run_id", "string", "Training run id", false),
		openapi.QueryParam("k", "integer", "Cluster count", false).Min(1),
		openapi.QueryParam("min_silhouette", "number", "Minimum silhouette score", false).Min(-1).Max(1),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of model versions", "ModelVersionPage"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var latestOp = &openapi.Operation{
	Summary:     "Latest model version",
	Description: "Highest version number of the named model in any stage.",
	Parameters:  []*openapi.Parameter{nameParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Model version", "ModelVersion"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find model version",
	Parameters: []*openapi.Parameter{nameParam, versionParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Model version", "ModelVersion"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var artifactOp = &openapi.Operation{
	Summary:    "Download model artifact",
	Parameters: []*openapi.Parameter{nameParam, versionParam},
	Responses: map[int]*openapi.Response{
		200: {Description: "Artifact JSON document"},
		404: openapi.ResponseRef("NotFound"),
	},
}

var stageOp = &openapi.Operation{
	Summary:     "Set model version stage",
	Parameters:  []*openapi.Parameter{nameParam, versionParam},
	RequestBody: openapi.RequestBodyJSON("StageCommand", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Updated model version", "ModelVersion"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
