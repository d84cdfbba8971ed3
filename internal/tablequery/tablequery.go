// Package tablequery turns dashboard table parameters (pagination, filters,
// sorting, free-text search and embedded relations) into a gorm query chain.
package tablequery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type Operator string

const (
	OpEq    Operator = "eq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpNe    Operator = "ne"
	OpILike Operator = "ilike"
)

const (
	DefaultPage       = 1
	DefaultPageSize   = 10
	MaxPageSize       = 1000
	MaxPage           = 1000000
	DefaultSortColumn = "id"
	SortAsc           = "asc"
	SortDesc          = "desc"

	// OwnerColumn scopes rows to the user that created them.
	OwnerColumn = "user_id"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownRelation = errors.New("unknown relation")
	ErrInvalidOperator = errors.New("invalid filter operator")
)

// Filter is a single column condition. A zero Operator means equality.
type Filter struct {
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Eq is shorthand for an equality filter.
func Eq(v any) Filter { return Filter{Operator: OpEq, Value: v} }

type Params struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection string
	Filters       map[string]Filter
	SearchTerm    string
	SearchColumns []string

	// ForeignKeys maps a relation (struct field, snake_case name or json name)
	// to the related columns to embed. An empty column list embeds every column.
	ForeignKeys map[string][]string

	OwnerID          string
	ApplyOwnerFilter bool
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func (p Params) withDefaults() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.SortColumn == "" {
		p.SortColumn = DefaultSortColumn
	}
	if p.SortDirection != SortDesc {
		p.SortDirection = SortAsc
	}
	return p
}

// Offset is the number of rows skipped before the requested page.
func (p Params) Offset() int {
	p = p.withDefaults()
	return (p.Page - 1) * p.PageSize
}

// Fetch runs the paginated query for the table backing T.
func Fetch[T any](ctx context.Context, db *gorm.DB, p Params) (*Page[T], error) {
	p = p.withDefaults()

	model := new(T)
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	sch := stmt.Schema

	base, err := Scope(db.WithContext(ctx).Model(model), sch, p)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", sch.Table, err)
	}
	// Session makes the filtered chain safe to reuse for both the count and
	// the page query.
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("fetching %s: %w", sch.Table, err)
	}

	sortCol, err := column(sch, p.SortColumn)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: sort: %w", sch.Table, err)
	}

	query := base.
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortCol}, Desc: p.SortDirection == SortDesc}).
		Limit(p.PageSize).
		Offset(p.Offset())

	query, err = preload(query, sch, p.ForeignKeys)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", sch.Table, err)
	}

	rows := make([]T, 0, p.PageSize)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching %s: %w", sch.Table, err)
	}

	return &Page[T]{
		Data:       rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
	}, nil
}

// Scope applies the owner filter, column filters and search of p to q.
// Sorting and pagination are left to the caller.
func Scope(q *gorm.DB, sch *schema.Schema, p Params) (*gorm.DB, error) {
	if p.ApplyOwnerFilter && p.OwnerID != "" && sch.LookUpField(OwnerColumn) != nil {
		q = q.Where(clause.Eq{Column: clause.Column{Name: OwnerColumn}, Value: p.OwnerID})
	}

	names := make([]string, 0, len(p.Filters))
	for name := range p.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := p.Filters[name]
		if isEmpty(f.Value) {
			continue
		}
		col, err := column(sch, name)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		expr, err := condition(q, col, f)
		if err != nil {
			return nil, err
		}
		q = q.Where(expr)
	}

	term := strings.TrimSpace(p.SearchTerm)
	if term != "" && len(p.SearchColumns) > 0 {
		exprs := make([]clause.Expression, 0, len(p.SearchColumns))
		for _, name := range p.SearchColumns {
			col, err := column(sch, name)
			if err != nil {
				return nil, fmt.Errorf("search: %w", err)
			}
			exprs = append(exprs, ilike(q, col, term))
		}
		q = q.Where(clause.Or(exprs...))
	}

	return q, nil
}

func condition(q *gorm.DB, col string, f Filter) (clause.Expression, error) {
	c := clause.Column{Name: col}
	switch f.Operator {
	case "", OpEq:
		return clause.Eq{Column: c, Value: f.Value}, nil
	case OpGt:
		return clause.Gt{Column: c, Value: f.Value}, nil
	case OpGte:
		return clause.Gte{Column: c, Value: f.Value}, nil
	case OpLt:
		return clause.Lt{Column: c, Value: f.Value}, nil
	case OpLte:
		return clause.Lte{Column: c, Value: f.Value}, nil
	case OpNe:
		return clause.Neq{Column: c, Value: f.Value}, nil
	case OpILike:
		return ilike(q, col, fmt.Sprint(f.Value)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, f.Operator)
}

// ilike matches value anywhere in col, ignoring case. Only PostgreSQL has
// ILIKE; other dialects lower both sides.
func ilike(q *gorm.DB, col, value string) clause.Expression {
	pattern := "%" + value + "%"
	if q.Dialector.Name() == "postgres" {
		return clause.Expr{SQL: "? ILIKE ?", Vars: []any{clause.Column{Name: col}, pattern}}
	}
	return clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []any{clause.Column{Name: col}, pattern}}
}

func preload(q *gorm.DB, sch *schema.Schema, foreignKeys map[string][]string) (*gorm.DB, error) {
	keys := make([]string, 0, len(foreignKeys))
	for k := range foreignKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rel := relation(sch, key)
		if rel == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRelation, key)
		}
		cols, err := relatedColumns(rel, foreignKeys[key])
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", key, err)
		}
		if len(cols) == 0 {
			q = q.Preload(rel.Name)
			continue
		}
		q = q.Preload(rel.Name, func(tx *gorm.DB) *gorm.DB { return tx.Select(cols) })
	}
	return q, nil
}

func relation(sch *schema.Schema, key string) *schema.Relationship {
	snake := schema.NamingStrategy{}
	for name, rel := range sch.Relationships.Relations {
		if strings.EqualFold(name, key) || snake.ColumnName("", name) == key {
			return rel
		}
		if jsonName, _, _ := strings.Cut(rel.Field.Tag.Get("json"), ","); jsonName == key {
			return rel
		}
	}
	return nil
}

// relatedColumns validates the requested columns and adds the keys gorm needs
// to stitch preloaded rows back onto their parents.
func relatedColumns(rel *schema.Relationship, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	var cols []string
	add := func(c string) {
		if c != "" && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}

	if pk := rel.FieldSchema.PrioritizedPrimaryField; pk != nil {
		add(pk.DBName)
	}
	for _, ref := range rel.References {
		if ref.ForeignKey != nil && ref.ForeignKey.Schema == rel.FieldSchema {
			add(ref.ForeignKey.DBName)
		}
		if ref.PrimaryKey != nil && ref.PrimaryKey.Schema == rel.FieldSchema {
			add(ref.PrimaryKey.DBName)
		}
	}
	for _, name := range requested {
		col, err := column(rel.FieldSchema, name)
		if err != nil {
			return nil, err
		}
		add(col)
	}
	return cols, nil
}

// column resolves a column or field name to the database column name, refusing
// anything that is not a real column of the table.
func column(sch *schema.Schema, name string) (string, error) {
	f := sch.LookUpField(strings.TrimSpace(name))
	if f == nil || f.DBName == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return f.DBName, nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	}
	return false
}
