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

package datasource

import "errors"

var (
	ErrInvalidName         = errors.New("invalid data source name")
	ErrDuplicateName       = errors.New("data source name must be unique")
	ErrUnknownDriver       = errors.New("unknown driver")
	ErrUnknownFieldType    = errors.New("unknown field type")
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidComparison   = errors.New("comparison not allowed for field type")
	ErrInvalidParameter    = errors.New("invalid field parameter")
	ErrUnsupportedOrdering = errors.New("driver query does not support ordering")
	ErrUnknownDataSource   = errors.New("unknown data source")
	ErrExtensionMismatch   = errors.New("extension does not extend driver")
)
