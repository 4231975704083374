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
	"slices"
)

// CapabilityEntityInfo is the capability of entities exposing a name accessor.
const CapabilityEntityInfo = "EntityInfo"

// EntityInfo is implemented by entities that can be looked up by name.
type EntityInfo interface {
	GetName() string
}

// Descriptor is a fully resolved schema. It is read-only and may be shared by
// any number of concurrent validations.
type Descriptor struct {
	root         *Node
	description  string
	capabilities []string
}

// Root returns the root object node.
func (d *Descriptor) Root() *Node {
	return d.root
}

// Description returns the human-readable description of the schema.
func (d *Descriptor) Description() string {
	return d.description
}

// Capabilities returns the capabilities entities of this schema must implement.
func (d *Descriptor) Capabilities() []string {
	return slices.Clone(d.capabilities)
}

// Implements reports whether the schema declares the named capability.
func (d *Descriptor) Implements(capability string) bool {
	return slices.Contains(d.capabilities, capability)
}

// Validate checks doc against the schema and returns the defaulted instance.
func (d *Descriptor) Validate(doc map[string]interface{}) (*Instance, error) {
	return d.ValidateWithOptions(doc, ValidateOptions{})
}

// ValidateWithOptions is Validate with explicit options.
func (d *Descriptor) ValidateWithOptions(doc map[string]interface{}, opts ValidateOptions) (*Instance, error) {
	if d == nil {
		return nil, errNotLoaded()
	}
	v := &validator{opts: opts}
	obj, err := v.validateObject(d.root, doc, nil)
	if err != nil {
		return nil, err
	}
	return newInstance(d.root.PropertyNames(), obj), nil
}

// Validate checks doc against d. A nil descriptor has not been loaded.
func Validate(d *Descriptor, doc map[string]interface{}) (*Instance, error) {
	return d.Validate(doc)
}
