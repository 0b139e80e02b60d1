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

package demo

import (
	"context"
	"strings"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/driver/orm"
	"github.com/tomoncle/datasource/event"
	"github.com/tomoncle/datasource/field"
	"github.com/tomoncle/datasource/options"
	"github.com/tomoncle/datasource/types"
)

// OptionEnum names the enum a number field stores. EnumArticleStatus is
// the only one known.
const (
	OptionEnum        = "enum"
	EnumArticleStatus = "article_status"
)

// AttributeChoices lists the accepted names on field views.
const AttributeChoices = "choices"

// StatusExtension lets orm number fields holding an ArticleStatus be
// filtered by status name: ?fields[status]=published.
type StatusExtension struct{ ds.ExtensionBase }

func NewStatusExtension() ds.Extension { return StatusExtension{} }

func (StatusExtension) DriverExtensions() []ds.DriverExtension {
	return []ds.DriverExtension{statusDriver{}}
}

type statusDriver struct{}

func (statusDriver) Subscriptions() []event.Subscription { return nil }
func (statusDriver) ExtendedDriverTypes() []string       { return []string{orm.DriverType} }
func (statusDriver) FieldTypes() []ds.FieldType          { return nil }

func (statusDriver) FieldTypeExtensions() []ds.FieldTypeExtension {
	return []ds.FieldTypeExtension{statusField{}}
}

type statusField struct{}

func (statusField) ExtendedFieldTypes() []string { return []string{field.TypeNumber} }

func (statusField) DefineOptions(r *options.Resolver) {
	r.SetDefault(OptionEnum, "")
	r.SetAllowedValues(OptionEnum, "", EnumArticleStatus)
}

func (statusField) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Event: ds.FieldPreBindParameter, Listener: preBindStatus},
		{Event: ds.FieldPostBuildView, Listener: statusChoices},
	}
}

func preBindStatus(_ context.Context, evt any) error {
	fe := evt.(*ds.FieldEvent)
	if fe.Field.OptionString(OptionEnum) != EnumArticleStatus {
		return nil
	}
	fe.Value = statusNumbers(fe.Value)
	return nil
}

// statusNumbers replaces status names by their numbers. Values that are
// not statuses are kept for the number type to reject.
func statusNumbers(v any) any {
	switch x := v.(type) {
	case string:
		if st, ok := ParseArticleStatus(strings.TrimSpace(x)); ok {
			return st.Number()
		}
		if strings.Contains(x, ",") {
			parts := strings.Split(x, ",")
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = statusNumbers(p)
			}
			return out
		}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = statusNumbers(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = statusNumbers(item)
		}
		return out
	case ds.Parameters:
		return statusNumbers(map[string]any(x))
	}
	return v
}

func statusChoices(_ context.Context, evt any) error {
	fe := evt.(*ds.FieldViewEvent)
	if fe.Field.OptionString(OptionEnum) == EnumArticleStatus {
		fe.View.SetAttribute(AttributeChoices, types.EnumNames(ArticleStatuses))
	}
	return nil
}
