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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	ds "github.com/tomoncle/datasource"
	"github.com/tomoncle/datasource/driver/orm"
	"github.com/tomoncle/datasource/types"
)

type baseRepositoryImpl[T any] struct {
	db      *bun.DB
	factory *ds.Factory
}

// NewRepository returns a repository of T. Data sources are created by
// factory, which must know the orm driver.
func NewRepository[T any](db *bun.DB, factory *ds.Factory) Repository[T] {
	return &baseRepositoryImpl[T]{db: db, factory: factory}
}

// DataSource creates an orm data source on T. opts are passed to the orm
// driver; the model option is always T.
func (r *baseRepositoryImpl[T]) DataSource(name string, opts map[string]any) (*ds.DataSource, error) {
	merged := make(map[string]any, len(opts)+1)
	for k, v := range opts {
		merged[k] = v
	}
	merged[orm.OptionModel] = (*T)(nil)
	return r.factory.CreateDataSource(orm.DriverType, merged, name)
}

// Page binds params to source and returns its result as a page of T.
func (r *baseRepositoryImpl[T]) Page(ctx context.Context, source *ds.DataSource, params ds.Parameters) (*types.Pagination[T], error) {
	if err := source.BindParameters(ctx, params); err != nil {
		return nil, err
	}
	res, err := source.Result(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := source.MaxResults()
	page := 1
	if pageSize > 0 {
		page = source.FirstResult()/pageSize + 1
	} else {
		pageSize = res.Count()
	}
	pagination := types.NewDefaultPagination[T](page, pageSize)
	pagination.Total = res.Count()
	pagination.Items = ds.Items[*T](res)
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&entity).Exec(ctx)
	return err
}

// Upsert inserts entities and updates fields on key conflicts, using
// ON CONFLICT or ON DUPLICATE KEY depending on the dialect.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}

	query := r.db.NewInsert().Model(&entity)
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		if len(duplicateKeys) == 0 {
			duplicateKeys = []string{"id"}
		}
		set := make([]string, 0, len(fields))
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(field), bun.Ident(field)))
		}
		query = query.On("CONFLICT (" + strings.Join(duplicateKeys, ",") + ") DO UPDATE").Set(strings.Join(set, ", "))
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		set := make([]string, 0, len(fields))
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(field), bun.Ident(field)))
		}
		query = query.On("DUPLICATE KEY UPDATE " + strings.Join(set, ", "))
	default:
		return r.upsertFallback(ctx, entity)
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
