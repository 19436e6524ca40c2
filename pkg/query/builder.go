package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Op is a comparison operator accepted by WhereCompare.
type Op string

const (
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
)

// SortField represents a single column in an ORDER BY clause.
// Field is the logical field name (mapped via ProjectionMap).
type SortField struct {
	Field      string
	Descending bool
}

// params numbers positional arguments in the order conditions render.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

type condition func(p *params) string

// Builder constructs SELECT statements over a ProjectionMap. Conditions are
// joined with AND and numbered from $1 when a statement is built, so the same
// Builder can produce a count and a page query with matching arguments.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	orderBy     []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields parses a comma-separated sort string into a SortField slice.
// Fields prefixed with "-" are descending, e.g. "-Version,CreatedAt".
// Returns nil for empty input.
func ParseSortFields(s string) []SortField {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: field, Descending: desc})
	}
	return fields
}

// OrderByFields sets the sort order, overriding the default sort fields.
// Fields without a projected column are skipped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderBy = b.orderBy[:0]
	for _, f := range fields {
		if b.projection.Has(f.Field) {
			b.orderBy = append(b.orderBy, f)
		}
	}
	return b
}

// WhereEquals adds an equality condition. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.WhereCompare(field, "=", value)
}

// WhereCompare adds a "column op value" condition. No-op for nil values.
func (b *Builder) WhereCompare(field string, op Op, value any) *Builder {
	if isNil(value) {
		return b
	}

	col := b.projection.Column(field)
	b.conditions = append(b.conditions, func(p *params) string {
		return fmt.Sprintf("%s %s %s", col, op, p.bind(deref(value)))
	})
	return b
}

// WhereIn adds an IN condition for multiple values. No-op for empty slices.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}

	col := b.projection.Column(field)
	b.conditions = append(b.conditions, func(p *params) string {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = p.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", "))
	})
	return b
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	var p params
	sql := "SELECT COUNT(*) FROM " + b.projection.From() + b.where(&p)
	return sql, p.args
}

// BuildPage returns a paginated SELECT query with ordering, limit, and offset.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	var p params
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		b.where(&p),
		b.order(),
		pageSize,
		(page-1)*pageSize,
	)
	return sql, p.args
}

// BuildSingleOrNull returns a SELECT query limited to one row with the current conditions.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	var p params
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT 1",
		b.projection.Columns(),
		b.projection.From(),
		b.where(&p),
		b.order(),
	)
	return sql, p.args
}

func (b *Builder) order() string {
	fields := b.orderBy
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = b.projection.Column(f.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) where(p *params) string {
	if len(b.conditions) == 0 {
		return ""
	}

	clauses := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = c(p)
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// deref passes the pointed-to value to the driver so filters can hold
// optional fields as pointers.
func deref(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}
