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
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/options"
)

type category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

type article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID         int64   `bun:"id,pk,autoincrement"`
	Title      string  `bun:"title"`
	Summary    *string `bun:"summary"`
	Views      int     `bun:"views"`
	CategoryID int64   `bun:"category_id"`
}

func strPtr(s string) *string { return &s }

func openDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, filepath.Join(t.TempDir(), "orm.db"))
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*category)(nil), (*article)(nil)} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}
	categories := []*category{{Name: "go"}, {Name: "rust"}}
	_, err = db.NewInsert().Model(&categories).Exec(ctx)
	require.NoError(t, err)
	articles := []*article{
		{Title: "Go generics", Summary: strPtr("type params"), Views: 15, CategoryID: 1},
		{Title: "Rust ownership", Views: 5, CategoryID: 2},
		{Title: "Going further", Summary: strPtr("more go"), Views: 25, CategoryID: 1},
		{Title: "Python tips", Views: 10, CategoryID: 2},
	}
	_, err = db.NewInsert().Model(&articles).Exec(ctx)
	require.NoError(t, err)
	return db
}

func newNews(t *testing.T, db *bun.DB, opts map[string]any) *ds.DataSource {
	t.Helper()
	if opts == nil {
		opts = map[string]any{OptionModel: (*article)(nil)}
	}
	drv, err := NewFactory(db).CreateDriver(opts)
	require.NoError(t, err)
	source, err := ds.New("news", drv)
	require.NoError(t, err)
	return source
}

func result(t *testing.T, source *ds.DataSource, fields map[string]any) ds.Result {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, source.BindParameters(ctx, ds.Parameters{"news": map[string]any{"fields": fields}}))
	res, err := source.Result(ctx)
	require.NoError(t, err)
	return res
}

func titles(r ds.Result) []string {
	var out []string
	for _, a := range ds.Items[*article](r) {
		out = append(out, a.Title)
	}
	return out
}

func TestFactory_Options(t *testing.T) {
	db := openDB(t)
	_, err := NewFactory(db).CreateDriver(map[string]any{})
	assert.ErrorIs(t, err, options.ErrMissingOption)

	_, err = NewFactory(db).CreateDriver(map[string]any{OptionModel: 3})
	assert.ErrorIs(t, err, options.ErrInvalidOption)

	drv, err := NewFactory(db).CreateDriver(map[string]any{OptionModel: article{}})
	require.NoError(t, err)
	assert.Equal(t, DriverType, drv.Type())
	assert.True(t, drv.HasFieldType(TypeEntity))
	assert.True(t, drv.HasFieldType("datetime"))
}

func TestFactory_ModelName(t *testing.T) {
	db := openDB(t)
	f := NewFactory(db)
	f.lookup = func(name string) (interface{}, bool) {
		if name == "article" {
			return (*article)(nil), true
		}
		return nil, false
	}

	drv, err := f.CreateDriver(map[string]any{OptionModel: "article"})
	require.NoError(t, err)
	assert.Equal(t, "article", drv.(*Driver).ModelType().Name())

	_, err = f.CreateDriver(map[string]any{OptionModel: "missing"})
	assert.ErrorIs(t, err, options.ErrInvalidOption)
}

func TestResult_Filters(t *testing.T) {
	source := newNews(t, openDB(t), nil)
	_, err := source.AddField("title", "text", ds.Contains, nil)
	require.NoError(t, err)
	_, err = source.AddField("views", "number", ds.Between, nil)
	require.NoError(t, err)

	res := result(t, source, map[string]any{"title": "GO"})
	assert.Equal(t, 2, res.Count())
	assert.ElementsMatch(t, []string{"Go generics", "Going further"}, titles(res))

	res = result(t, source, map[string]any{"title": "go", "views": map[string]any{"from": "20"}})
	assert.Equal(t, []string{"Going further"}, titles(res))

	res = result(t, source, map[string]any{"views": []any{"5", "10"}})
	assert.ElementsMatch(t, []string{"Rust ownership", "Python tips"}, titles(res))
}

func TestResult_NullAndIn(t *testing.T) {
	source := newNews(t, openDB(t), nil)
	_, err := source.AddField("summary", "text", ds.IsNull, nil)
	require.NoError(t, err)
	_, err = source.AddField("id", "number", ds.NotIn, nil)
	require.NoError(t, err)

	res := result(t, source, map[string]any{"summary": ds.NullValue})
	assert.ElementsMatch(t, []string{"Rust ownership", "Python tips"}, titles(res))

	res = result(t, source, map[string]any{"summary": ds.NotNullValue, "id": []any{"1"}})
	assert.Equal(t, []string{"Going further"}, titles(res))
}

func TestResult_Entity(t *testing.T) {
	db := openDB(t)
	source := newNews(t, db, nil)
	_, err := source.AddField("category", TypeEntity, ds.Eq, map[string]any{"field": "category_id"})
	require.NoError(t, err)

	res := result(t, source, map[string]any{"category": &category{ID: 2, Name: "rust"}})
	assert.ElementsMatch(t, []string{"Rust ownership", "Python tips"}, titles(res))

	res = result(t, source, map[string]any{"category": "1"})
	assert.ElementsMatch(t, []string{"Go generics", "Going further"}, titles(res))
}

func TestResult_OrderPageAndEmpty(t *testing.T) {
	source := newNews(t, openDB(t), nil)
	views, err := source.AddField("views", "number", ds.Gte, nil)
	require.NoError(t, err)
	source.Driver().(*Driver).Dispatcher().AddListener(ds.DriverPreGetResult, func(ctx context.Context, evt any) error {
		return evt.(*ds.DriverEvent).Query.(ds.Sorter).OrderBy(views, true)
	}, 0)

	source.SetMaxResults(2)
	source.SetFirstResult(1)
	res := result(t, source, nil)
	assert.Equal(t, 4, res.Count())
	assert.Equal(t, []string{"Go generics", "Python tips"}, titles(res))

	res = result(t, source, map[string]any{"views": "1000"})
	assert.Equal(t, 0, res.Count())
	assert.Equal(t, 0, res.Len())
}

func TestResult_QueryOption(t *testing.T) {
	db := openDB(t)
	source := newNews(t, db, map[string]any{
		OptionModel: (*article)(nil),
		OptionQuery: func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.category_id = ?", 1)
		},
	})
	_, err := source.AddField("views", "number", ds.Gt, map[string]any{OptionClause: ClauseWhere})
	require.NoError(t, err)

	res := result(t, source, map[string]any{"views": "20"})
	assert.Equal(t, []string{"Going further"}, titles(res))

	_, err = source.AddField("views", "number", ds.Gt, map[string]any{OptionClause: "group"})
	assert.ErrorIs(t, err, options.ErrInvalidOption)
}

type release struct {
	bun.BaseModel `bun:"table:releases,alias:r"`

	ID          int64     `bun:"id,pk"`
	Title       string    `bun:"title"`
	Day         time.Time `bun:"day"`
	PublishedAt time.Time `bun:"published_at"`
}

func releases(t *testing.T) *ds.DataSource {
	t.Helper()
	db := openDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE releases (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		day DATE NOT NULL,
		published_at DATETIME NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO releases (id, title, day, published_at) VALUES
		(1, '50% off', '2024-01-02', '2024-01-02 10:00:00'),
		(2, '500 items', '2024-02-10', '2024-02-10 08:30:00'),
		(3, 'snake_case', '2024-03-05', '2024-03-05 23:59:59'),
		(4, 'snakeXcase', '2024-04-01', '2024-04-01 00:00:00')`)
	require.NoError(t, err)
	return newNews(t, db, map[string]any{OptionModel: (*release)(nil)})
}

func releaseTitles(r ds.Result) []string {
	var out []string
	for _, rel := range ds.Items[*release](r) {
		out = append(out, rel.Title)
	}
	return out
}

func TestResult_TemporalColumns(t *testing.T) {
	source := releases(t)
	_, err := source.AddField("day", "date", ds.Eq, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"50% off"}, releaseTitles(result(t, source, map[string]any{"day": "2024-01-02"})))

	_, err = source.AddField("day", "date", ds.Between, nil)
	require.NoError(t, err)
	res := result(t, source, map[string]any{"day": map[string]any{"from": "2024-01-15", "to": "2024-03-05"}})
	assert.ElementsMatch(t, []string{"500 items", "snake_case"}, releaseTitles(res))

	_, err = source.AddField("published_at", "datetime", ds.Gte, nil)
	require.NoError(t, err)
	res = result(t, source, map[string]any{"published_at": "2024-03-05 23:59:59"})
	assert.ElementsMatch(t, []string{"snake_case", "snakeXcase"}, releaseTitles(res))
}

func TestResult_LikeWildcardsAreLiteral(t *testing.T) {
	source := releases(t)
	_, err := source.AddField("title", "text", ds.Contains, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"50% off"}, releaseTitles(result(t, source, map[string]any{"title": "50%"})))
	assert.Equal(t, []string{"snake_case"}, releaseTitles(result(t, source, map[string]any{"title": "E_C"})))

	_, err = source.AddField("title", "text", ds.Like, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case"}, releaseTitles(result(t, source, map[string]any{"title": "e_c"})))
}
