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

import "encoding/json"

// View is the read-only picture of a data source handed to templates,
// JSON encoders and terminal renderers.
type View struct {
	name            string
	parameters      Parameters
	otherParameters Parameters
	fields          []*FieldView
	attributes      map[string]any
}

// NewView returns a view without fields.
func NewView(name string, parameters, otherParameters Parameters) *View {
	if parameters == nil {
		parameters = Parameters{}
	}
	if otherParameters == nil {
		otherParameters = Parameters{}
	}
	return &View{
		name:            name,
		parameters:      parameters,
		otherParameters: otherParameters,
		attributes:      map[string]any{},
	}
}

func (v *View) Name() string                { return v.name }
func (v *View) Parameters() Parameters      { return v.parameters }
func (v *View) OtherParameters() Parameters { return v.otherParameters }

// AllParameters merges the other data sources' parameters with this one's.
func (v *View) AllParameters() Parameters {
	return v.otherParameters.Clone().Merge(v.parameters)
}

func (v *View) Fields() []*FieldView {
	out := make([]*FieldView, len(v.fields))
	copy(out, v.fields)
	return out
}

// AddField appends fv, replacing a field view of the same name.
func (v *View) AddField(fv *FieldView) {
	for i, existing := range v.fields {
		if existing.Name == fv.Name {
			v.fields[i] = fv
			return
		}
	}
	v.fields = append(v.fields, fv)
}

func (v *View) Field(name string) (*FieldView, bool) {
	for _, fv := range v.fields {
		if fv.Name == name {
			return fv, true
		}
	}
	return nil, false
}

func (v *View) SetAttribute(name string, value any) { v.attributes[name] = value }
func (v *View) Attribute(name string) any           { return v.attributes[name] }

func (v *View) HasAttribute(name string) bool {
	_, ok := v.attributes[name]
	return ok
}

func (v *View) Attributes() map[string]any { return v.attributes }

func (v *View) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name            string         `json:"name"`
		Parameters      Parameters     `json:"parameters"`
		OtherParameters Parameters     `json:"other_parameters"`
		Fields          []*FieldView   `json:"fields"`
		Attributes      map[string]any `json:"attributes"`
	}{v.name, v.parameters, v.otherParameters, v.fields, v.attributes})
}

// FieldView describes one field of a view.
type FieldView struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Comparison string         `json:"comparison"`
	Parameter  any            `json:"parameter,omitempty"`
	Attributes map[string]any `json:"attributes"`
}

func (fv *FieldView) SetAttribute(name string, value any) {
	if fv.Attributes == nil {
		fv.Attributes = map[string]any{}
	}
	fv.Attributes[name] = value
}

func (fv *FieldView) Attribute(name string) any { return fv.Attributes[name] }

func (fv *FieldView) HasAttribute(name string) bool {
	_, ok := fv.Attributes[name]
	return ok
}
