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

package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/options"
)

// Field type names shared by the drivers.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeTime     = "time"
	TypeBoolean  = "boolean"
)

// OptionFormat is the layout temporal fields parse parameters with.
const OptionFormat = "format"

// Default layouts of the temporal kinds.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
	TimeFormat     = "15:04:05"
)

// Kind is a field type that can convert raw parameters, usually strings
// from a query string, into the value drivers compare with.
type Kind interface {
	ds.FieldType
	Convert(f *ds.Field, raw any) (any, error)
}

// Build normalizes the parameter bound to f for its comparison using
// the conversion of kind. ok is false when f does not filter.
func Build(f *ds.Field, kind Kind) (ds.Predicate, bool, error) {
	return ds.BuildPredicate(f.Comparison(), f.Parameter(), func(raw any) (any, error) {
		return kind.Convert(f, raw)
	})
}

// Text compares strings.
type Text struct{ ds.BaseFieldType }

func NewText() Text {
	return Text{ds.NewBaseFieldType(TypeText,
		ds.Eq, ds.Neq, ds.In, ds.NotIn, ds.Like, ds.Contains, ds.IsNull)}
}

func (Text) Convert(_ *ds.Field, raw any) (any, error) { return cast.ToStringE(raw) }

// Number compares integers, or floats when the parameter has a fraction.
type Number struct{ ds.BaseFieldType }

func NewNumber() Number {
	return Number{ds.NewBaseFieldType(TypeNumber,
		ds.Eq, ds.Neq, ds.Lt, ds.Lte, ds.Gt, ds.Gte, ds.In, ds.NotIn, ds.Between, ds.IsNull)}
}

func (Number) Convert(_ *ds.Field, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("%q is not a number", s)
	case float32, float64:
		return cast.ToFloat64E(v)
	}
	return cast.ToInt64E(raw)
}

// Boolean only compares for equality.
type Boolean struct{ ds.BaseFieldType }

func NewBoolean() Boolean {
	return Boolean{ds.NewBaseFieldType(TypeBoolean, ds.Eq)}
}

func (Boolean) Convert(_ *ds.Field, raw any) (any, error) {
	if s, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "on", "y":
			return true, nil
		case "no", "off", "n":
			return false, nil
		}
	}
	return cast.ToBoolE(raw)
}

// Temporal is a date, datetime or time field parsed with its format option.
type Temporal struct {
	ds.BaseFieldType
	layout string
}

var temporalComparisons = []string{
	ds.Eq, ds.Neq, ds.Lt, ds.Lte, ds.Gt, ds.Gte, ds.Between, ds.IsNull,
}

func NewDate() Temporal {
	return Temporal{ds.NewBaseFieldType(TypeDate, temporalComparisons...), DateFormat}
}

func NewDateTime() Temporal {
	return Temporal{ds.NewBaseFieldType(TypeDateTime, temporalComparisons...), DateTimeFormat}
}

func NewTime() Temporal {
	return Temporal{ds.NewBaseFieldType(TypeTime, temporalComparisons...), TimeFormat}
}

func (t Temporal) DefineOptions(r *options.Resolver) {
	r.SetDefault(OptionFormat, t.layout)
	r.SetAllowedTypes(OptionFormat, "string")
}

// Layout returns the format option of f, or the kind's default.
func (t Temporal) Layout(f *ds.Field) string {
	if f != nil {
		if l := f.OptionString(OptionFormat); l != "" {
			return l
		}
	}
	return t.layout
}

func (t Temporal) Convert(f *ds.Field, raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if tm, err := time.ParseInLocation(t.Layout(f), s, time.Local); err == nil {
			return tm, nil
		}
		tm, err := cast.ToTimeE(s)
		if err != nil {
			return nil, fmt.Errorf("%q does not match layout %q", s, t.Layout(f))
		}
		return tm, nil
	}
	return cast.ToTimeE(raw)
}

// Kinds returns one instance of every shared kind.
func Kinds() []Kind {
	return []Kind{NewText(), NewNumber(), NewDate(), NewDateTime(), NewTime(), NewBoolean()}
}
