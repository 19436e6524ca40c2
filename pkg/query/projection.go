// Package query builds parameterized PostgreSQL SELECT statements over a
// projection of view property names onto table columns.
package query

import "strings"

// ProjectionMap maps view property names to alias-qualified columns of one
// table. Column order follows the order of Project calls.
type ProjectionMap struct {
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   schema + "." + table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column to viewName. Panics if viewName is already mapped.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	if _, dup := p.columns[viewName]; dup {
		panic("query: duplicate projection for " + viewName)
	}
	qualified := p.alias + "." + column
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Table returns the schema-qualified table name for INSERT and UPDATE.
func (p *ProjectionMap) Table() string {
	return p.table
}

// From returns the aliased table reference for SELECT.
func (p *ProjectionMap) From() string {
	return p.table + " " + p.alias
}

// Column returns the qualified column for viewName, or viewName itself when
// it is not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Has reports whether viewName is mapped.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Columns returns the projected columns as a SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
