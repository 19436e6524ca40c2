package pagination_test

import (
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/segmenter/pkg/pagination"
	"github.com/JaimeStill/segmenter/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("SEGMENTER_TEST_PAGE_SIZE", "50")
	t.Setenv("SEGMENTER_TEST_MAX_PAGE", "200")
	t.Setenv("SEGMENTER_TEST_BAD", "lots")

	tests := []struct {
		name        string
		cfg         pagination.Config
		env         *pagination.ConfigEnv
		wantDefault int
		wantMax     int
		wantErr     string
	}{
		{name: "defaults", wantDefault: 20, wantMax: 100},
		{
			name:        "env overrides",
			env:         &pagination.ConfigEnv{DefaultPageSize: "SEGMENTER_TEST_PAGE_SIZE", MaxPageSize: "SEGMENTER_TEST_MAX_PAGE"},
			wantDefault: 50,
			wantMax:     200,
		},
		{
			name:        "unparseable env ignored",
			cfg:         pagination.Config{DefaultPageSize: 10},
			env:         &pagination.ConfigEnv{DefaultPageSize: "SEGMENTER_TEST_BAD"},
			wantDefault: 10,
			wantMax:     100,
		},
		{
			name:    "default exceeds max",
			cfg:     pagination.Config{DefaultPageSize: 200, MaxPageSize: 100},
			wantErr: "default_page_size cannot exceed max_page_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(tt.env)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if cfg.DefaultPageSize != tt.wantDefault || cfg.MaxPageSize != tt.wantMax {
				t.Errorf("got default=%d max=%d, want %d/%d", cfg.DefaultPageSize, cfg.MaxPageSize, tt.wantDefault, tt.wantMax)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := defaultConfig()
	base.Merge(&pagination.Config{DefaultPageSize: 50})

	if base.DefaultPageSize != 50 || base.MaxPageSize != 100 {
		t.Errorf("merge: got %+v, want default 50 and max 100", base)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "zero values get defaults",
			req:          pagination.PageRequest{},
			wantPage:     1,
			wantPageSize: 20,
		},
		{
			name:         "negative page corrected",
			req:          pagination.PageRequest{Page: -1, PageSize: 10},
			wantPage:     1,
			wantPageSize: 10,
		},
		{
			name:         "page size clamped to max",
			req:          pagination.PageRequest{Page: 1, PageSize: 500},
			wantPage:     1,
			wantPageSize: 100,
		},
		{
			name:         "valid values preserved",
			req:          pagination.PageRequest{Page: 3, PageSize: 25},
			wantPage:     3,
			wantPageSize: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(cfg)
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantOffset int
	}{
		{"page 1", 1, 20, 0},
		{"page 2", 2, 20, 20},
		{"page 3 size 10", 3, 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			if got := req.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
		wantSort []query.SortField
	}{
		{
			name:     "all params present",
			query:    "page=2&page_size=15&sort=Name,-Version",
			wantPage: 2,
			wantSize: 15,
			wantSort: []query.SortField{{Field: "Name"}, {Field: "Version", Descending: true}},
		},
		{"empty params get defaults", "", 1, 20, nil},
		{"unparseable numbers get defaults", "page=two&page_size=x", 1, 20, nil},
		{"size clamped", "page_size=1000", 1, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantSize {
				t.Errorf("PageSize = %d, want %d", req.PageSize, tt.wantSize)
			}
			if !slices.Equal(req.Sort, tt.wantSort) {
				t.Errorf("Sort = %v, want %v", req.Sort, tt.wantSort)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		page           int
		pageSize       int
		wantTotalPages int
		wantHasNext    bool
	}{
		{"exact division", 100, 1, 20, 5, true},
		{"remainder", 101, 6, 20, 6, false},
		{"single page", 5, 1, 20, 1, false},
		{"empty result", 0, 1, 20, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, tt.page, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.HasNext != tt.wantHasNext {
				t.Errorf("HasNext = %v, want %v", result.HasNext, tt.wantHasNext)
			}
			if result.Total != tt.total || result.Page != tt.page || result.PageSize != tt.pageSize {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestNewPageResultNilDataBecomesEmpty(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"data":[]`) {
		t.Errorf("encoded = %s, want empty data array", data)
	}
}
