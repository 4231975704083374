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
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
)

// ToJSONSchemaProps converts the descriptor into an OpenAPI v3 schema suitable
// for a CustomResourceDefinition. References are inlined. When stripDefaults
// is set, default values are omitted.
func (d *Descriptor) ToJSONSchemaProps(stripDefaults bool) (*apiextensionsv1.JSONSchemaProps, error) {
	if d == nil {
		return nil, errNotLoaded()
	}
	props, err := toJSONSchemaProps(d.root, stripDefaults)
	if err != nil {
		return nil, err
	}
	return &props, nil
}

func toJSONSchemaProps(n *Node, stripDefaults bool) (apiextensionsv1.JSONSchemaProps, error) {
	props := apiextensionsv1.JSONSchemaProps{
		Type:        string(n.Kind()),
		Description: n.Description(),
	}

	if !stripDefaults {
		if def, ok := n.Default(); ok {
			raw, err := json.Marshal(def)
			if err != nil {
				return props, fmt.Errorf("failed to encode default of %s: %v", n.Pointer(), err)
			}
			props.Default = &apiextensionsv1.JSON{Raw: raw}
		}
	}

	switch n.Kind() {
	case KindObject:
		names := n.PropertyNames()
		if len(names) > 0 {
			props.Properties = make(map[string]apiextensionsv1.JSONSchemaProps, len(names))
		}
		for _, name := range names {
			child, _ := n.Property(name)
			childProps, err := toJSONSchemaProps(child, stripDefaults)
			if err != nil {
				return props, err
			}
			props.Properties[name] = childProps
		}
		props.Required = n.Required()
	case KindArray:
		items, err := toJSONSchemaProps(n.Items(), stripDefaults)
		if err != nil {
			return props, err
		}
		props.Items = &apiextensionsv1.JSONSchemaPropsOrArray{Schema: &items}
	}
	return props, nil
}
