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
	"fmt"
	"reflect"

	"github.com/uptrace/bun"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
)

// Field options shared by every orm field type.
const (
	OptionAutoAlias = "auto_alias"
	OptionClause    = "clause"
)

// Values of the clause option.
const (
	ClauseWhere  = "where"
	ClauseHaving = "having"
)

// TypeEntity filters on a relation by primary key.
const TypeEntity = "entity"

func defineQueryOptions(r *options.Resolver) {
	r.SetDefault(OptionAutoAlias, true)
	r.SetAllowedTypes(OptionAutoAlias, "bool")
	r.SetDefault(OptionClause, ClauseWhere)
	r.SetAllowedValues(OptionClause, ClauseWhere, ClauseHaving)
}

// fieldType adds the query options to a shared scalar kind.
type fieldType struct {
	field.Kind
}

func (t fieldType) Unwrap() field.Kind { return t.Kind }

func (t fieldType) DefineOptions(r *options.Resolver) {
	t.Kind.DefineOptions(r)
	defineQueryOptions(r)
}

// EntityType compares a foreign key column with a model or its primary key.
type EntityType struct {
	ds.BaseFieldType
	db *bun.DB
}

func NewEntityType(db *bun.DB) EntityType {
	return EntityType{
		BaseFieldType: ds.NewBaseFieldType(TypeEntity, ds.Eq, ds.Neq, ds.In, ds.NotIn, ds.IsNull),
		db:            db,
	}
}

func (t EntityType) DefineOptions(r *options.Resolver) { defineQueryOptions(r) }

// Convert reduces a model, or a pointer to one, to the value of its
// first primary key. Scalars pass through.
func (t EntityType) Convert(_ *ds.Field, raw any) (any, error) {
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil entity")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return raw, nil
	}
	table := t.db.Table(rv.Type())
	if len(table.PKs) == 0 {
		return nil, fmt.Errorf("model %s has no primary key", rv.Type())
	}
	return rv.FieldByIndex(table.PKs[0].Index).Interface(), nil
}

func fieldTypes(db *bun.DB) []ds.FieldType {
	types := []ds.FieldType{NewEntityType(db)}
	for _, k := range field.Kinds() {
		types = append(types, fieldType{Kind: k})
	}
	return types
}
