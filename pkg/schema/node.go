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
	"k8s.io/apimachinery/pkg/runtime"
)

// Node describes one field or sub-structure of a schema. A Node is either a
// concrete shape (object, array, string or integer) or an alias: a reference
// to another node whose shape it shares. Aliases keep their own default and
// description.
//
// Nodes are immutable once Load returns.
type Node struct {
	pointer     string
	kind        Kind
	description string

	propertyNames []string
	properties    map[string]*Node
	required      []string
	requiredSet   map[string]struct{}
	items         *Node

	defaultValue interface{}
	hasDefault   bool

	ref    string
	target *Node
}

// Pointer returns the JSON pointer of the node within its document.
func (n *Node) Pointer() string {
	return n.pointer
}

// IsAlias reports whether the node was declared with a reference.
func (n *Node) IsAlias() bool {
	return n.target != nil
}

// Ref returns the reference the node was declared with, if any.
func (n *Node) Ref() string {
	return n.ref
}

// Target returns the concrete node an alias resolves to, or n itself.
func (n *Node) Target() *Node {
	return n.shape()
}

func (n *Node) shape() *Node {
	if n.target != nil {
		return n.target
	}
	return n
}

// Kind returns the kind of the node's shape.
func (n *Node) Kind() Kind {
	return n.shape().kind
}

// Description returns the node's own description, falling back to the
// description of the aliased node.
func (n *Node) Description() string {
	if n.description != "" {
		return n.description
	}
	return n.shape().description
}

// PropertyNames returns the property names of an object node in declaration order.
func (n *Node) PropertyNames() []string {
	return append([]string(nil), n.shape().propertyNames...)
}

// Property returns the named property of an object node.
func (n *Node) Property(name string) (*Node, bool) {
	p, ok := n.shape().properties[name]
	return p, ok
}

// Required returns the required property names of an object node.
func (n *Node) Required() []string {
	return append([]string(nil), n.shape().required...)
}

// IsRequired reports whether name is in the node's required set.
func (n *Node) IsRequired(name string) bool {
	_, ok := n.shape().requiredSet[name]
	return ok
}

// Items returns the element schema of an array node.
func (n *Node) Items() *Node {
	return n.shape().items
}

// Default returns a copy of the node's own default value. Aliases do not
// inherit the default of the node they refer to.
func (n *Node) Default() (interface{}, bool) {
	if !n.hasDefault {
		return nil, false
	}
	return runtime.DeepCopyJSONValue(n.defaultValue), true
}
