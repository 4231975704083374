/*
Copyright 2024 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"encoding/json"
	"slices"

	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/runtime"
)

// NameField is the property holding an entity's name.
const NameField = "name"

// Instance is a validated and defaulted document. It holds only fields that
// were supplied or defaulted, and it is never modified after creation.
type Instance struct {
	fields map[string]interface{}
	order  []string
}

var _ EntityInfo = &Instance{}

func newInstance(declared []string, fields map[string]interface{}) *Instance {
	order := make([]string, 0, len(fields))
	for _, name := range declared {
		if _, ok := fields[name]; ok {
			order = append(order, name)
		}
	}
	return &Instance{fields: fields, order: order}
}

// GetName returns the value of the name field, or "" when it is absent.
func (i *Instance) GetName() string {
	name, _ := i.fields[NameField].(string)
	return name
}

// WithName returns a copy of the instance whose name is set to name.
func (i *Instance) WithName(name string) *Instance {
	fields := i.Object()
	fields[NameField] = name
	order := slices.Clone(i.order)
	if !slices.Contains(order, NameField) {
		order = append([]string{NameField}, order...)
	}
	return &Instance{fields: fields, order: order}
}

// Has reports whether the field is present.
func (i *Instance) Has(name string) bool {
	_, ok := i.fields[name]
	return ok
}

// Get returns a copy of a top-level field value.
func (i *Instance) Get(name string) (interface{}, bool) {
	v, ok := i.fields[name]
	if !ok {
		return nil, false
	}
	return runtime.DeepCopyJSONValue(v), true
}

// GetString returns a string field.
func (i *Instance) GetString(name string) (string, bool) {
	s, ok := i.fields[name].(string)
	return s, ok
}

// GetInt64 returns an integer field.
func (i *Instance) GetInt64(name string) (int64, bool) {
	n, ok := i.fields[name].(int64)
	return n, ok
}

// Fields returns the names of the present fields in declaration order.
func (i *Instance) Fields() []string {
	return slices.Clone(i.order)
}

// Object returns a deep copy of the instance as an unstructured object.
func (i *Instance) Object() map[string]interface{} {
	return runtime.DeepCopyJSON(i.fields)
}

// Into decodes the instance into a typed entity such as a struct with json tags.
func (i *Instance) Into(out interface{}) error {
	return runtime.DefaultUnstructuredConverter.FromUnstructured(i.Object(), out)
}

// Equal reports whether both instances hold the same fields and values.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	return equality.Semantic.DeepEqual(i.fields, other.fields)
}

// MarshalJSON encodes the instance fields.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.fields)
}
