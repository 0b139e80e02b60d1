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

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type fixtureItem struct {
	bun.BaseModel `bun:"table:fixture_items"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func init() {
	_ = RegisterModel("fixture_item", (*fixtureItem)(nil), 1)
}

func sqliteConfig(t *testing.T) *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = filepath.Join(t.TempDir(), "test.db")
	cfg.MaxOpenConns = 1
	return cfg
}

func openManager(t *testing.T) AbstractDatabaseManager {
	t.Helper()
	m := NewDatabaseManager(sqliteConfig(t))
	require.NoError(t, m.Connect(context.Background()))
	t.Cleanup(func() { _ = m.Disconnect() })
	return m
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", SQLiteDSN(&ConnectionConfig{}))
	assert.Equal(t, "app.db", SQLiteDSN(&ConnectionConfig{DBName: "app"}))
	assert.Equal(t, "/tmp/app.sqlite", SQLiteDSN(&ConnectionConfig{DBName: "/tmp/app.sqlite"}))
}

func TestDSNs(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBName = "db", 5432, "u", "p", "news"
	assert.Equal(t, "postgres://u:p@db:5432/news?sslmode=disable&connect_timeout=10", PostgresDSN(cfg))
	assert.Contains(t, MySQLDSN(cfg), "u:p@tcp(db:5432)/news?charset=utf8mb4&parseTime=True")
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "postgres", NormalizeType("PostgreSQL"))
	assert.Equal(t, "sqlite", NormalizeType("sqlite3"))
	assert.Equal(t, "mysql", NormalizeType("mariadb"))
	assert.Equal(t, "oracle", NormalizeType("oracle"))
}

func TestManager_ConnectAndCreateTables(t *testing.T) {
	m := openManager(t)
	ctx := context.Background()

	assert.Equal(t, "sqlite3", m.DriverName())
	assert.NotNil(t, m.GetSQLX())
	assert.NoError(t, m.Ping(ctx))
	require.NoError(t, m.CreateTables(ctx))

	_, err := m.GetDB().NewInsert().Model(&fixtureItem{Name: "a"}).Exec(ctx)
	require.NoError(t, err)

	var count int
	require.NoError(t, m.GetSQLX().GetContext(ctx, &count, "SELECT COUNT(*) FROM fixture_items"))
	assert.Equal(t, 1, count)

	status := m.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, m.GetStats().MaxOpenConns)
}

func TestManager_Disconnected(t *testing.T) {
	m := NewDatabaseManager(sqliteConfig(t))
	assert.ErrorIs(t, m.Ping(context.Background()), ErrNotConnected)
	assert.ErrorIs(t, m.CreateTables(context.Background()), ErrNotConnected)
	assert.False(t, m.HealthCheck(context.Background()).Healthy)
	assert.NoError(t, m.Disconnect())
}

func TestFactory_CreateFromConfig(t *testing.T) {
	f := NewDatabaseFactory()
	_, err := f.CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.Error(t, err)

	dir := t.TempDir()
	t.Setenv("DB_NAME", filepath.Join(dir, "env.db"))
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	cfg := sqliteConfig(t)
	_, err = f.CreateFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "env.db"), cfg.DBName)
	assert.Equal(t, 3, cfg.MaxOpenConns)

	require.NoError(t, f.InitializeDatabase(context.Background(), true))
	defer f.Close()
	assert.True(t, f.GetHealthStatus(context.Background()).Healthy)
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		kind SQLError
	}{
		{errors.New("SQL logic error: no such column: foo (1)"), NoColumnErr},
		{errors.New("no such table: missing"), NoTableErr},
		{errors.New("UNIQUE constraint failed: items.name"), DuplicateKeyErr},
		{errors.New(`pq: syntax error at or near "FROM"`), SyntaxErr},
		{&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, DuplicateKeyErr},
		{&mysql.MySQLError{Number: 1054, Message: "Unknown column"}, NoColumnErr},
	}
	for _, c := range cases {
		ok, kind := ClassifyError(c.err)
		assert.True(t, ok, c.err.Error())
		assert.Equal(t, c.kind, kind, c.err.Error())
	}

	ok, kind := ClassifyError(errors.New("connection refused"))
	assert.False(t, ok)
	assert.Equal(t, "unknown", kind.String())
	assert.True(t, NoColumnErr.IsQueryError())
	assert.False(t, DuplicateKeyErr.IsQueryError())
}

func TestModelRegistry(t *testing.T) {
	r := NewModelRegistry()
	require.NoError(t, r.Register("b", &fixtureItem{}, 2))
	require.NoError(t, r.Register("a", &fixtureItem{}, 2))
	require.NoError(t, r.Register("c", &fixtureItem{}, 1))
	assert.Error(t, r.Register("a", &fixtureItem{}, 0))

	var names []string
	for _, m := range r.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)

	_, ok := r.Lookup("missing")
	assert.False(t, ok)
	_, ok = LookupModel("fixture_item")
	assert.True(t, ok)
}

func TestSplitStatements(t *testing.T) {
	script := `
-- seed
INSERT INTO a VALUES (1);
INSERT INTO a
  VALUES (2);

SELECT 1`
	assert.Equal(t, []string{
		"INSERT INTO a VALUES (1);",
		"INSERT INTO a VALUES (2);",
		"SELECT 1",
	}, SplitStatements(script))
}

func TestFixtureLoader(t *testing.T) {
	m := openManager(t)
	ctx := context.Background()
	require.NoError(t, m.CreateTables(ctx))

	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("common/02_second.sql", "INSERT INTO fixture_items (name) VALUES ('second');")
	write("common/01_first.sql", "INSERT INTO fixture_items (name) VALUES ('first');")
	write("environments/dev/01_env.sql", "INSERT INTO fixture_items (name) VALUES ('{{.ENVIRONMENT}}');")
	write("environments/prod/01_env.sql", "INSERT INTO fixture_items (name) VALUES ('prod');")

	loader := NewFixtureLoader(m.GetDB(), root, "dev")
	files, err := loader.Files()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "01_first.sql", files[0].Name)
	assert.Equal(t, "02_second.sql", files[1].Name)
	assert.Equal(t, "dev", files[2].Environment)

	results, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	var names []string
	require.NoError(t, m.GetSQLX().SelectContext(ctx, &names, "SELECT name FROM fixture_items ORDER BY id"))
	assert.Equal(t, []string{"first", "second", "dev"}, names)
}

func TestFixtureLoader_StopsOnError(t *testing.T) {
	m := openManager(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "common"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "common", "01_bad.sql"), []byte("INSERT INTO nowhere VALUES (1);"), 0o644))

	_, err := NewFixtureLoader(m.GetDB(), root, "").Load(context.Background())
	require.Error(t, err)
	ok, kind := ClassifyError(err)
	assert.True(t, ok)
	assert.Equal(t, NoTableErr, kind)
}
