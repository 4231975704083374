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
	"sync/atomic"
)

// Registry holds the active descriptor. It starts unloaded; every successful
// Load atomically replaces the active descriptor, and a failed Load leaves the
// previous one in place. Callers that obtained a descriptor keep using it
// until they are done.
type Registry struct {
	active atomic.Pointer[Descriptor]
}

// NewRegistry returns an unloaded registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Load parses text and makes the result the active descriptor.
func (r *Registry) Load(text []byte) (*Descriptor, error) {
	d, err := Load(text)
	if err != nil {
		return nil, err
	}
	r.active.Store(d)
	return d, nil
}

// Store makes d the active descriptor.
func (r *Registry) Store(d *Descriptor) {
	r.active.Store(d)
}

// Loaded reports whether a descriptor is active.
func (r *Registry) Loaded() bool {
	return r.active.Load() != nil
}

// Descriptor returns the active descriptor.
func (r *Registry) Descriptor() (*Descriptor, error) {
	d := r.active.Load()
	if d == nil {
		return nil, errNotLoaded()
	}
	return d, nil
}

// Validate validates doc against the active descriptor.
func (r *Registry) Validate(doc map[string]interface{}) (*Instance, error) {
	return r.ValidateWithOptions(doc, ValidateOptions{})
}

// ValidateWithOptions validates doc against the active descriptor with opts.
func (r *Registry) ValidateWithOptions(doc map[string]interface{}, opts ValidateOptions) (*Instance, error) {
	d, err := r.Descriptor()
	if err != nil {
		return nil, err
	}
	return d.ValidateWithOptions(doc, opts)
}
