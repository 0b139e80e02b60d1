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

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an object stored in a JSON or text column.
type JSONMap map[string]any

// JSONList is a list of strings stored in a JSON or text column.
type JSONList []string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}
	*j = nil
	return scanJSON(value, j)
}

func (j JSONList) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func (j *JSONList) Scan(value any) error {
	if value == nil {
		*j = JSONList{}
		return nil
	}
	*j = nil
	return scanJSON(value, j)
}

// Contains reports whether s is in the list.
func (j JSONList) Contains(s string) bool {
	for _, v := range j {
		if v == s {
			return true
		}
	}
	return false
}

// sqlite and pq hand text columns back as string, mysql as []byte.
func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("cannot scan %T into %T", value, dest)
}
