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
	"sort"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateOptions tunes validation.
type ValidateOptions struct {
	// RejectUnknownFields fails validation on fields the schema does not
	// declare instead of pruning them.
	RejectUnknownFields bool
}

type validator struct {
	opts ValidateOptions
}

func (v *validator) validateObject(n *Node, obj map[string]interface{}, path *field.Path) (map[string]interface{}, error) {
	shape := n.shape()
	if v.opts.RejectUnknownFields {
		if err := rejectUnknownFields(shape, obj, path); err != nil {
			return nil, err
		}
	}

	out := make(map[string]interface{}, len(shape.propertyNames))
	for _, name := range shape.propertyNames {
		prop := shape.properties[name]
		p := childPath(path, name)

		raw, supplied := obj[name]
		if !supplied || raw == nil {
			if d, ok := prop.Default(); ok {
				out[name] = d
			} else if shape.IsRequired(name) {
				return nil, missingRequired(p)
			}
			continue
		}

		val, err := v.validateValue(prop, raw, p)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

func (v *validator) validateValue(n *Node, raw interface{}, path *field.Path) (interface{}, error) {
	switch kind := n.Kind(); kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeMismatch(path, kind, raw)
		}
		return s, nil
	case KindInteger:
		i, ok := toInt64(raw)
		if !ok {
			return nil, typeMismatch(path, kind, raw)
		}
		return i, nil
	case KindObject:
		obj, ok := asObject(raw)
		if !ok {
			return nil, typeMismatch(path, kind, raw)
		}
		return v.validateObject(n, obj, path)
	case KindArray:
		elems, ok := asArray(raw)
		if !ok {
			return nil, typeMismatch(path, kind, raw)
		}
		items := n.Items()
		out := make([]interface{}, len(elems))
		for i, elem := range elems {
			p := path.Index(i)
			if elem == nil {
				return nil, &ValidationError{Reason: ReasonMalformedArrayElement, Field: p.String()}
			}
			val, err := v.validateValue(items, elem, p)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	}
	// Load only builds nodes of recognized kinds.
	return nil, typeMismatch(path, n.Kind(), raw)
}

func rejectUnknownFields(shape *Node, obj map[string]interface{}, path *field.Path) error {
	var unknown []string
	for name := range obj {
		if _, ok := shape.properties[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &ValidationError{
		Reason: ReasonUnknownField,
		Field:  childPath(path, unknown[0]).String(),
		Value:  obj[unknown[0]],
	}
}

func childPath(path *field.Path, name string) *field.Path {
	if path == nil {
		return field.NewPath(name)
	}
	return path.Child(name)
}
