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

package repository

import (
	"context"

	"github.com/uptrace/bun"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/types"
)

// Writer stores entities, used to seed the tables data sources read.
type Writer[T any] interface {
	Create(ctx context.Context, entity ...*T) error
	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
}

// Pager reads pages of entities through a data source.
type Pager[T any] interface {
	DataSource(name string, opts map[string]any) (*ds.DataSource, error)
	Page(ctx context.Context, source *ds.DataSource, params ds.Parameters) (*types.Pagination[T], error)
}

// Repository combines writes and data source backed reads of one model.
type Repository[T any] interface {
	Writer[T]
	Pager[T]
	Count(ctx context.Context) (int, error)
}
