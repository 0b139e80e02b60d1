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
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datasource/database"
	"github.com/tomoncle/datasource/types"
)

// Registry names of the demo models, used by the orm driver's model option.
const (
	ModelCategory = "category"
	ModelArticle  = "article"
)

func init() {
	for _, m := range []struct {
		name     string
		instance any
		priority int
	}{
		{ModelCategory, (*Category)(nil), 10},
		{ModelArticle, (*Article)(nil), 20},
	} {
		if err := database.RegisterModel(m.name, m.instance, m.priority); err != nil {
			panic(err)
		}
	}
}

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
	Slug string `bun:"slug,unique" json:"slug"`
}

type ArticleStatus int

const (
	StatusDraft ArticleStatus = iota
	StatusPublished
	StatusArchived
)

var ArticleStatuses = []ArticleStatus{StatusDraft, StatusPublished, StatusArchived}

var articleStatusNames = map[ArticleStatus][2]string{
	StatusDraft:     {"draft", "not visible yet"},
	StatusPublished: {"published", "visible to readers"},
	StatusArchived:  {"archived", "kept for reference"},
}

func (s ArticleStatus) IsValid() bool {
	_, ok := articleStatusNames[s]
	return ok
}

func (s ArticleStatus) Number() int {
	if !s.IsValid() {
		return types.IllegalValue
	}
	return int(s)
}

func (s ArticleStatus) Name() string {
	if !s.IsValid() {
		return types.IllegalName
	}
	return articleStatusNames[s][0]
}

func (s ArticleStatus) Desc() string {
	if !s.IsValid() {
		return types.IllegalDesc
	}
	return articleStatusNames[s][1]
}

func (s ArticleStatus) String() string { return s.Name() }

// ParseArticleStatus accepts a status name or number.
func ParseArticleStatus(s string) (ArticleStatus, bool) {
	if st, ok := types.EnumByName(ArticleStatuses, s); ok {
		return st, true
	}
	if n, err := strconv.Atoi(s); err == nil && ArticleStatus(n).IsValid() {
		return ArticleStatus(n), true
	}
	return 0, false
}

type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID          int64          `bun:"id,pk,autoincrement" json:"id"`
	Title       string         `bun:"title,notnull" json:"title"`
	Body        string         `bun:"body" json:"body"`
	CategoryID  int64          `bun:"category_id" json:"category_id"`
	Status      ArticleStatus  `bun:"status" json:"status"`
	Tags        types.JSONList `bun:"tags,type:text" json:"tags"`
	Meta        types.JSONMap  `bun:"meta,type:text" json:"meta"`
	Views       int            `bun:"views" json:"views"`
	PublishedAt time.Time      `bun:"published_at,nullzero" json:"published_at"`
}
