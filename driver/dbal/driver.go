/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dbal

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
)

// DriverType is the type name of the squirrel driver.
const DriverType = "dbal"

// Driver options.
const (
	OptionTable = "table"
	OptionAlias = "alias"
	OptionQuery = "query"
)

// QueryFunc builds the base select. It receives a builder without
// columns, already selecting FROM <table> <alias> when a table is set,
// and must add the columns.
type QueryFunc func(b sq.SelectBuilder) sq.SelectBuilder

// Factory creates dbal drivers sharing one connection.
type Factory struct {
	db *sqlx.DB
}

func NewFactory(db *sqlx.DB) *Factory { return &Factory{db: db} }

func (*Factory) DriverType() string { return DriverType }

// CreateDriver needs "table", "query" or both.
func (f *Factory) CreateDriver(opts map[string]any) (ds.Driver, error) {
	r := options.NewResolver()
	r.SetDefault(OptionTable, "")
	r.SetAllowedTypes(OptionTable, "string")
	r.SetDefault(OptionAlias, "")
	r.SetAllowedTypes(OptionAlias, "string")
	r.SetDefault(OptionQuery, nil)
	r.SetAllowedTypes(OptionQuery, "nil", "func")
	resolved, err := r.Resolve(opts)
	if err != nil {
		return nil, err
	}

	var cfg struct {
		Table string `mapstructure:"table"`
		Alias string `mapstructure:"alias"`
	}
	if err := options.Decode(map[string]any{
		OptionTable: resolved[OptionTable],
		OptionAlias: resolved[OptionAlias],
	}, &cfg); err != nil {
		return nil, err
	}

	var query QueryFunc
	switch fn := resolved[OptionQuery].(type) {
	case nil:
	case QueryFunc:
		query = fn
	case func(sq.SelectBuilder) sq.SelectBuilder:
		query = fn
	default:
		return nil, fmt.Errorf("%w: %s must be func(squirrel.SelectBuilder) squirrel.SelectBuilder, got %T",
			options.ErrInvalidOption, OptionQuery, fn)
	}
	if cfg.Table == "" && query == nil {
		return nil, fmt.Errorf("%w: %s or %s", options.ErrMissingOption, OptionTable, OptionQuery)
	}
	return NewDriver(f.db, cfg.Table, cfg.Alias, query), nil
}

// Driver runs squirrel built queries through sqlx.
type Driver struct {
	*ds.DriverBase
	db    *sqlx.DB
	table string
	alias string
	query QueryFunc
}

func NewDriver(db *sqlx.DB, table, alias string, query QueryFunc) *Driver {
	kinds := field.Kinds()
	types := make([]ds.FieldType, len(kinds))
	for i, k := range kinds {
		types[i] = fieldType{Kind: k}
	}
	return &Driver{
		DriverBase: ds.NewDriverBase(DriverType, types...),
		db:         db,
		table:      table,
		alias:      alias,
		query:      query,
	}
}

func (d *Driver) base() sq.SelectBuilder {
	b := sq.Select()
	if d.table != "" {
		from := d.table
		if d.alias != "" {
			from += " " + d.alias
		}
		b = b.From(from)
	}
	if d.query != nil {
		return d.query(b)
	}
	return b.Columns("*")
}

// Result runs the count and the page fetch concurrently. Items are
// map[string]any rows.
func (d *Driver) Result(ctx context.Context, fields []*ds.Field, first, limit int) (ds.Result, error) {
	q := &Query{Builder: d.base(), Alias: d.alias}
	return d.Execute(ctx, d, fields, q, func(ctx context.Context) (ds.Result, error) {
		for _, f := range fields {
			kind, ok := f.FieldType().(field.Kind)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not a dbal field type", ds.ErrUnknownFieldType, f.Type())
			}
			p, ok, err := field.Build(f, kind)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			if ok {
				q.Filter(f, field.Bind(kind, p))
			}
		}

		countSQL, countArgs, err := sq.Select("COUNT(*)").FromSelect(q.Builder, "dbal_count").ToSql()
		if err != nil {
			return nil, err
		}
		page := q.Builder
		if limit > 0 {
			page = page.Limit(uint64(limit))
		}
		if first > 0 {
			page = page.Offset(uint64(first))
		}
		pageSQL, pageArgs, err := page.ToSql()
		if err != nil {
			return nil, err
		}

		var (
			total int
			items []any
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return d.db.QueryRowxContext(gctx, d.db.Rebind(countSQL), countArgs...).Scan(&total)
		})
		g.Go(func() error {
			var err error
			items, err = d.fetch(gctx, d.db.Rebind(pageSQL), pageArgs)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return ds.NewResult(items, total), nil
	})
}

func (d *Driver) fetch(ctx context.Context, query string, args []any) ([]any, error) {
	rows, err := d.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

// Query wraps the select builder handed to driver listeners.
type Query struct {
	Builder sq.SelectBuilder
	Alias   string
}

func (q *Query) column(f *ds.Field) string {
	m := f.Mapping()
	if q.Alias != "" && f.OptionBool(OptionAutoAlias) && !strings.Contains(m, ".") {
		return q.Alias + "." + m
	}
	return m
}

func (q *Query) OrderBy(f *ds.Field, desc bool) error {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	q.Builder = q.Builder.OrderBy(q.column(f) + dir)
	return nil
}

// Filter adds the condition of p on f's column to the WHERE or HAVING
// clause, depending on the clause option.
func (q *Query) Filter(f *ds.Field, p ds.Predicate) {
	col := q.column(f)
	var pred sq.Sqlizer
	switch p.Comparison {
	case ds.Eq:
		pred = sq.Eq{col: p.Value}
	case ds.Neq:
		pred = sq.NotEq{col: p.Value}
	case ds.Lt:
		pred = sq.Lt{col: p.Value}
	case ds.Lte:
		pred = sq.LtOrEq{col: p.Value}
	case ds.Gt:
		pred = sq.Gt{col: p.Value}
	case ds.Gte:
		pred = sq.GtOrEq{col: p.Value}
	case ds.In:
		pred = sq.Eq{col: p.Values}
	case ds.NotIn:
		pred = sq.NotEq{col: p.Values}
	case ds.Between:
		pred = sq.Expr(col+" BETWEEN ? AND ?", p.From, p.To)
	case ds.IsNull:
		if p.Null {
			pred = sq.Eq{col: nil}
		} else {
			pred = sq.NotEq{col: nil}
		}
	case ds.Like:
		pred = sq.Expr(col+` LIKE ? ESCAPE '\'`, "%"+field.EscapeLike(fmt.Sprint(p.Value))+"%")
	case ds.Contains:
		pred = sq.Expr("LOWER("+col+`) LIKE ? ESCAPE '\'`, "%"+field.EscapeLike(strings.ToLower(fmt.Sprint(p.Value)))+"%")
	default:
		return
	}
	if f.OptionString(OptionClause) == ClauseHaving {
		q.Builder = q.Builder.Having(pred)
		return
	}
	q.Builder = q.Builder.Where(pred)
}
