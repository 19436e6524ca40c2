package query_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/segmenter/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "model_versions", "v").
		Project("id", "id").
		Project("name", "name").
		Project("k", "k").
		Project("created_at", "createdAt")
}

func ptr[T any](v T) *T { return &v }

func TestProjectionMapTable(t *testing.T) {
	p := testProjection()
	if got := p.Table(); got != "public.model_versions" {
		t.Errorf("Table() = %q, want %q", got, "public.model_versions")
	}
	if got := p.From(); got != "public.model_versions v" {
		t.Errorf("From() = %q, want %q", got, "public.model_versions v")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	got := p.Columns()
	want := "v.id, v.name, v.k, v.created_at"
	if got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate view name")
		}
	}()
	testProjection().Project("display_name", "name")
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "name", "v.name"},
		{"mapped camel", "createdAt", "v.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "single ascending",
			input: "name",
			want:  []query.SortField{{Field: "name", Descending: false}},
		},
		{
			name:  "single descending",
			input: "-createdAt",
			want:  []query.SortField{{Field: "createdAt", Descending: true}},
		},
		{
			name:  "multiple mixed",
			input: "name,-createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "with spaces",
			input: " name , -createdAt ",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "empty parts skipped",
			input: "name,,createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseSortFields(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

const columns = "SELECT v.id, v.name, v.k, v.created_at FROM public.model_versions v"

func TestBuilderConditions(t *testing.T) {
	tests := []struct {
		name     string
		build    func(b *query.Builder)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no conditions",
			build:   func(b *query.Builder) {},
			wantSQL: columns + " LIMIT 1",
		},
		{
			name:     "equals",
			build:    func(b *query.Builder) { b.WhereEquals("name", "FloSegmentationModel") },
			wantSQL:  columns + " WHERE v.name = $1 LIMIT 1",
			wantArgs: []any{"FloSegmentationModel"},
		},
		{
			name:     "equals dereferences pointers",
			build:    func(b *query.Builder) { b.WhereEquals("name", ptr("FloSegmentationModel")) },
			wantSQL:  columns + " WHERE v.name = $1 LIMIT 1",
			wantArgs: []any{"FloSegmentationModel"},
		},
		{
			name: "nil values skipped",
			build: func(b *query.Builder) {
				var name *string
				b.WhereEquals("name", name).WhereEquals("id", nil)
			},
			wantSQL: columns + " LIMIT 1",
		},
		{
			name:     "compare",
			build:    func(b *query.Builder) { b.WhereCompare("k", query.OpGreaterOrEqual, ptr(4)) },
			wantSQL:  columns + " WHERE v.k >= $1 LIMIT 1",
			wantArgs: []any{4},
		},
		{
			name:     "in",
			build:    func(b *query.Builder) { b.WhereIn("id", []any{"a", "b", "c"}) },
			wantSQL:  columns + " WHERE v.id IN ($1, $2, $3) LIMIT 1",
			wantArgs: []any{"a", "b", "c"},
		},
		{
			name:    "empty in skipped",
			build:   func(b *query.Builder) { b.WhereIn("id", nil) },
			wantSQL: columns + " LIMIT 1",
		},
		{
			name: "numbering across conditions",
			build: func(b *query.Builder) {
				b.WhereIn("id", []any{"a", "b"}).
					WhereEquals("name", "m").
					WhereCompare("k", query.OpLess, 8)
			},
			wantSQL:  columns + " WHERE v.id IN ($1, $2) AND v.name = $3 AND v.k < $4 LIMIT 1",
			wantArgs: []any{"a", "b", "m", 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection())
			tt.build(b)
			sql, args := b.BuildSingleOrNull()

			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if !slices.Equal(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuilderCountAndPageShareArgs(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true}).
		WhereEquals("name", "m").
		WhereCompare("k", query.OpGreater, 2)

	countSQL, countArgs := b.BuildCount()
	pageSQL, pageArgs := b.BuildPage(3, 25)

	if want := "SELECT COUNT(*) FROM public.model_versions v WHERE v.name = $1 AND v.k > $2"; countSQL != want {
		t.Errorf("count sql = %q, want %q", countSQL, want)
	}
	if want := columns + " WHERE v.name = $1 AND v.k > $2 ORDER BY v.created_at DESC LIMIT 25 OFFSET 50"; pageSQL != want {
		t.Errorf("page sql = %q, want %q", pageSQL, want)
	}
	if !slices.Equal(countArgs, pageArgs) || len(pageArgs) != 2 {
		t.Errorf("count args %v, page args %v", countArgs, pageArgs)
	}
}

func TestBuilderOrdering(t *testing.T) {
	tests := []struct {
		name    string
		order   []query.SortField
		wantSQL string
	}{
		{"default", nil, columns + " ORDER BY v.id ASC LIMIT 10 OFFSET 0"},
		{
			"override",
			[]query.SortField{{Field: "createdAt", Descending: true}, {Field: "name"}},
			columns + " ORDER BY v.created_at DESC, v.name ASC LIMIT 10 OFFSET 0",
		},
		{
			"unmapped skipped",
			[]query.SortField{{Field: "password"}, {Field: "k", Descending: true}},
			columns + " ORDER BY v.k DESC LIMIT 10 OFFSET 0",
		},
		{
			"all unmapped falls back",
			[]query.SortField{{Field: "v.id; DROP TABLE x"}},
			columns + " ORDER BY v.id ASC LIMIT 10 OFFSET 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection(), query.SortField{Field: "id"}).OrderByFields(tt.order)
			if sql, _ := b.BuildPage(1, 10); sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
		})
	}
}
