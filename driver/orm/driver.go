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

package orm

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
)

// DriverType is the type name of the bun driver.
const DriverType = "orm"

// Driver options.
const (
	OptionModel = "model"
	OptionQuery = "query"
)

// QueryFunc customizes the base select query, for example to join
// relations or group rows.
type QueryFunc func(q *bun.SelectQuery) *bun.SelectQuery

// Factory creates orm drivers sharing one bun database.
type Factory struct {
	db     *bun.DB
	lookup func(name string) (interface{}, bool)
}

// NewFactory returns a factory resolving model names through the
// database model registry.
func NewFactory(db *bun.DB) *Factory {
	return &Factory{db: db, lookup: database.LookupModel}
}

func (*Factory) DriverType() string { return DriverType }

// CreateDriver expects "model" to be a bun model struct, a pointer to one
// or the name of a registered model. "query" may be a QueryFunc.
func (f *Factory) CreateDriver(opts map[string]any) (ds.Driver, error) {
	r := options.NewResolver()
	r.SetRequired(OptionModel)
	r.SetAllowedTypes(OptionModel, "ptr", "struct", "string")
	r.SetDefault(OptionQuery, nil)
	r.SetAllowedTypes(OptionQuery, "nil", "func")
	resolved, err := r.Resolve(opts)
	if err != nil {
		return nil, err
	}

	model := resolved[OptionModel]
	if name, ok := model.(string); ok {
		if model, ok = f.lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s %q is not registered", options.ErrInvalidOption, OptionModel, name)
		}
	}
	modelType := reflect.TypeOf(model)
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s must be a struct, got %s", options.ErrInvalidOption, OptionModel, modelType)
	}

	var query QueryFunc
	switch fn := resolved[OptionQuery].(type) {
	case nil:
	case QueryFunc:
		query = fn
	case func(*bun.SelectQuery) *bun.SelectQuery:
		query = fn
	default:
		return nil, fmt.Errorf("%w: %s must be func(*bun.SelectQuery) *bun.SelectQuery, got %T",
			options.ErrInvalidOption, OptionQuery, fn)
	}
	return NewDriver(f.db, modelType, query), nil
}

// Driver builds a bun select query on one model.
type Driver struct {
	*ds.DriverBase
	db        *bun.DB
	modelType reflect.Type
	query     QueryFunc
}

func NewDriver(db *bun.DB, modelType reflect.Type, query QueryFunc) *Driver {
	return &Driver{
		DriverBase: ds.NewDriverBase(DriverType, fieldTypes(db)...),
		db:         db,
		modelType:  modelType,
		query:      query,
	}
}

// ModelType returns the struct type rows are scanned into.
func (d *Driver) ModelType() reflect.Type { return d.modelType }

// Result counts the matching rows first and only fetches the page when
// there is something to fetch. Items are pointers to the model.
func (d *Driver) Result(ctx context.Context, fields []*ds.Field, first, limit int) (ds.Result, error) {
	rows := reflect.New(reflect.SliceOf(reflect.PointerTo(d.modelType)))
	sel := d.db.NewSelect().Model(rows.Interface())
	if d.query != nil {
		sel = d.query(sel)
	}
	q := &Query{Select: sel}

	return d.Execute(ctx, d, fields, q, func(ctx context.Context) (ds.Result, error) {
		for _, f := range fields {
			kind, ok := f.FieldType().(field.Kind)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not an orm field type", ds.ErrUnknownFieldType, f.Type())
			}
			p, ok, err := field.Build(f, kind)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			if ok {
				q.Filter(f, field.Bind(kind, p))
			}
		}

		total, err := q.Select.Count(ctx)
		if err != nil || total == 0 {
			return ds.EmptyResult(), err
		}
		if first > 0 {
			q.Select.Offset(first)
		}
		if limit > 0 {
			q.Select.Limit(limit)
		}
		if err := q.Select.Scan(ctx); err != nil {
			return nil, err
		}

		slice := rows.Elem()
		items := make([]any, slice.Len())
		for i := range items {
			items[i] = slice.Index(i).Interface()
		}
		return ds.NewResult(items, total), nil
	})
}

// Query wraps the select query handed to driver listeners.
type Query struct {
	Select *bun.SelectQuery
}

// column returns the expression of f's mapping, prefixed with the model's
// table alias when auto_alias is set and the mapping is not qualified.
func column(f *ds.Field) (string, []any) {
	m := f.Mapping()
	if f.OptionBool(OptionAutoAlias) && !strings.Contains(m, ".") {
		return "?TableAlias.?", []any{bun.Ident(m)}
	}
	return "?", []any{bun.Ident(m)}
}

// OrderBy appends an ORDER BY on f's column.
func (q *Query) OrderBy(f *ds.Field, desc bool) error {
	expr, args := column(f)
	if desc {
		q.Select.OrderExpr(expr+" DESC", args...)
	} else {
		q.Select.OrderExpr(expr+" ASC", args...)
	}
	return nil
}

// Filter adds the condition of p on f's column to the WHERE or HAVING
// clause, depending on the clause option.
func (q *Query) Filter(f *ds.Field, p ds.Predicate) {
	add := q.Select.Where
	if f.OptionString(OptionClause) == ClauseHaving {
		add = q.Select.Having
	}
	col, args := column(f)
	switch p.Comparison {
	case ds.Eq:
		add(col+" = ?", append(args, p.Value)...)
	case ds.Neq:
		add(col+" <> ?", append(args, p.Value)...)
	case ds.Lt:
		add(col+" < ?", append(args, p.Value)...)
	case ds.Lte:
		add(col+" <= ?", append(args, p.Value)...)
	case ds.Gt:
		add(col+" > ?", append(args, p.Value)...)
	case ds.Gte:
		add(col+" >= ?", append(args, p.Value)...)
	case ds.In:
		add(col+" IN (?)", append(args, bun.In(p.Values))...)
	case ds.NotIn:
		add(col+" NOT IN (?)", append(args, bun.In(p.Values))...)
	case ds.Between:
		add(col+" BETWEEN ? AND ?", append(args, p.From, p.To)...)
	case ds.IsNull:
		if p.Null {
			add(col+" IS NULL", args...)
		} else {
			add(col+" IS NOT NULL", args...)
		}
	case ds.Like:
		add(col+` LIKE ? ESCAPE '\'`, append(args, "%"+field.EscapeLike(fmt.Sprint(p.Value))+"%")...)
	case ds.Contains:
		add("LOWER("+col+`) LIKE ? ESCAPE '\'`, append(args, "%"+field.EscapeLike(strings.ToLower(fmt.Sprint(p.Value)))+"%")...)
	}
}
