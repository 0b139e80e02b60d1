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
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datasource/repository"
	"github.com/tomoncle/datasource/types"
)

func Categories() []*Category {
	return []*Category{
		{ID: 1, Name: "Databases", Slug: "databases"},
		{ID: 2, Name: "Networking", Slug: "networking"},
		{ID: 3, Name: "Tooling", Slug: "tooling"},
	}
}

func Articles() []*Article {
	day := func(d int) time.Time { return time.Date(2025, time.March, d, 9, 0, 0, 0, time.UTC) }
	return []*Article{
		{ID: 1, Title: "Indexing strategies", Body: "B-trees and beyond.", CategoryID: 1, Status: StatusPublished,
			Tags: types.JSONList{"sql", "performance"}, Meta: types.JSONMap{"reading_minutes": 7}, Views: 1520, PublishedAt: day(3)},
		{ID: 2, Title: "Connection pooling", Body: "Sizing pools for bursty traffic.", CategoryID: 1, Status: StatusPublished,
			Tags: types.JSONList{"sql"}, Meta: types.JSONMap{"reading_minutes": 5}, Views: 980, PublishedAt: day(10)},
		{ID: 3, Title: "HTTP keep-alive", Body: "Reusing TCP connections.", CategoryID: 2, Status: StatusPublished,
			Tags: types.JSONList{"http"}, Meta: types.JSONMap{"reading_minutes": 4}, Views: 640, PublishedAt: day(12)},
		{ID: 4, Title: "Retry budgets", Body: "Bounding retries under load.", CategoryID: 2, Status: StatusDraft,
			Tags: types.JSONList{"resilience"}, Meta: types.JSONMap{}},
		{ID: 5, Title: "Profiling with pprof", Body: "Finding the hot path.", CategoryID: 3, Status: StatusPublished,
			Tags: types.JSONList{"go", "performance"}, Meta: types.JSONMap{"reading_minutes": 9}, Views: 2210, PublishedAt: day(20)},
		{ID: 6, Title: "Makefiles revisited", Body: "Still useful.", CategoryID: 3, Status: StatusArchived,
			Tags: types.JSONList{"build"}, Meta: types.JSONMap{"reading_minutes": 3}, Views: 75, PublishedAt: day(1)},
	}
}

// Seed upserts the demo categories and articles. It may run repeatedly.
func Seed(ctx context.Context, db *bun.DB) error {
	categories := repository.NewRepository[Category](db, nil)
	if err := categories.Upsert(ctx, []string{"name", "slug"}, []string{"id"}, Categories()...); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	articles := repository.NewRepository[Article](db, nil)
	fields := []string{"title", "body", "category_id", "status", "tags", "meta", "views", "published_at"}
	if err := articles.Upsert(ctx, fields, []string{"id"}, Articles()...); err != nil {
		return fmt.Errorf("seed articles: %w", err)
	}
	return nil
}
