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
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
)

// Field options shared by every dbal field type.
const (
	OptionAutoAlias = "auto_alias"
	OptionClause    = "clause"
)

// Values of the clause option.
const (
	ClauseWhere  = "where"
	ClauseHaving = "having"
)

type fieldType struct {
	field.Kind
}

func (t fieldType) Unwrap() field.Kind { return t.Kind }

func (t fieldType) DefineOptions(r *options.Resolver) {
	t.Kind.DefineOptions(r)
	r.SetDefault(OptionAutoAlias, true)
	r.SetAllowedTypes(OptionAutoAlias, "bool")
	r.SetDefault(OptionClause, ClauseWhere)
	r.SetAllowedValues(OptionClause, ClauseWhere, ClauseHaving)
}
