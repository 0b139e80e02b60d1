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

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cast"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/config"
	"github.com/tomoncle/datasource/extension/pagination"
)

var (
	PrimaryColor   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	SecondaryColor = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	MutedColor     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true).
				Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	PageInfoStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Table writes the title, the bound filters and the result items of a
// data source as terminal tables.
func Table(w io.Writer, view *ds.View, res ds.Result) error {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(view.Name()))
	b.WriteString("  ")
	b.WriteString(PageInfoStyle.Render(PageInfo(view, res)))
	b.WriteString("\n")

	if filters := Filters(view); len(filters) > 0 {
		b.WriteString(newTable([]string{"field", "type", "comparison", "value"}, filters).Render())
		b.WriteString("\n")
	}

	headers, rows := Rows(res.Items())
	if len(rows) == 0 {
		b.WriteString(PageInfoStyle.Render("no results"))
		b.WriteString("\n")
	} else {
		b.WriteString(newTable(headers, rows).Render())
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Definitions writes one row per data source definition.
func Definitions(w io.Writer, defs []*config.Definition) error {
	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		fields := make([]string, len(def.Fields))
		for i, f := range def.Fields {
			fields[i] = f.Name + ":" + f.Type
		}
		maxResults := ""
		if def.MaxResults > 0 {
			maxResults = fmt.Sprint(def.MaxResults)
		}
		rows = append(rows, []string{def.Name, def.Driver, maxResults, strings.Join(fields, " ")})
	}
	_, err := io.WriteString(w, newTable([]string{"name", "driver", "max", "fields"}, rows).Render()+"\n")
	return err
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return CellStyle
		}).
		Headers(headers...).
		Rows(rows...)
}

// PageInfo summarizes the pagination attributes of view, or the item
// counts of res when the view has none.
func PageInfo(view *ds.View, res ds.Result) string {
	if view.HasAttribute(pagination.AttributePage) {
		return fmt.Sprintf("page %v/%v, %d of %d",
			view.Attribute(pagination.AttributePage),
			view.Attribute(pagination.AttributePageCount),
			res.Len(), res.Count())
	}
	return fmt.Sprintf("%d of %d", res.Len(), res.Count())
}

// Filters lists the fields of view bound to a value.
func Filters(view *ds.View) [][]string {
	var rows [][]string
	for _, f := range view.Fields() {
		if ds.IsEmptyParameter(f.Parameter) {
			continue
		}
		rows = append(rows, []string{f.Name, f.Type, f.Comparison, Format(f.Parameter)})
	}
	return rows
}

// Rows flattens items into table rows. Map items contribute their keys,
// struct items their exported fields (json name when tagged); headers
// keep first-seen order for structs and sorted order for maps.
func Rows(items []any) ([]string, [][]string) {
	var headers []string
	index := map[string]int{}
	records := make([]map[string]string, 0, len(items))
	for _, item := range items {
		cols, values := columns(item)
		record := make(map[string]string, len(cols))
		for i, c := range cols {
			if _, ok := index[c]; !ok {
				index[c] = len(headers)
				headers = append(headers, c)
			}
			record[c] = values[i]
		}
		records = append(records, record)
	}

	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = record[h]
		}
		rows[i] = row
	}
	return headers, rows
}

func columns(item any) ([]string, []string) {
	v := reflect.ValueOf(item)
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		values := map[string]string{}
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = Format(iter.Value().Interface())
		}
		sort.Strings(keys)
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = values[k]
		}
		return keys, out
	case reflect.Struct:
		var cols, values []string
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() || sf.Anonymous {
				continue
			}
			name := sf.Name
			if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag == "-" {
				continue
			} else if tag != "" {
				name = tag
			}
			cols = append(cols, name)
			values = append(values, Format(v.Field(i).Interface()))
		}
		return cols, values
	}
	return []string{"value"}, []string{Format(item)}
}

// Format renders one value for a table cell.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateTime)
	case []byte:
		return string(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return Format(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Format(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Map, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// Document is the JSON form of a data source view and its result.
type Document struct {
	View  *ds.View `json:"view"`
	Count int      `json:"count"`
	Items []any    `json:"items"`
}

// NewDocument pairs view with the items of res.
func NewDocument(view *ds.View, res ds.Result) *Document {
	items := res.Items()
	if items == nil {
		items = []any{}
	}
	return &Document{View: view, Count: res.Count(), Items: items}
}

// JSON writes the view and result as indented JSON.
func JSON(w io.Writer, view *ds.View, res ds.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(view, res))
}
