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
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema document keywords.
const (
	keywordType         = "type"
	keywordDescription  = "description"
	keywordProperties   = "properties"
	keywordItems        = "items"
	keywordRequired     = "required"
	keywordDefault      = "default"
	keywordRef          = "$ref"
	keywordCapabilities = "x-kubernetes-entity-capabilities"
)

// Load parses a JSON or YAML schema document, resolves its references and
// returns the resulting descriptor. The root must declare `type: object`.
func Load(text []byte) (*Descriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, newSchemaError(ReasonMalformedDocument, "", "%v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, newSchemaError(ReasonMalformedDocument, "", "empty document")
	}

	l := &loader{
		document: deref(doc.Content[0]),
		built:    map[*yaml.Node]*Node{},
		visiting: map[*yaml.Node]bool{},
	}
	if l.document.Kind != yaml.MappingNode {
		return nil, newSchemaError(ReasonMalformedDocument, "#", "document must be a mapping")
	}
	fields, err := mappingFields(l.document, "#")
	if err != nil {
		return nil, err
	}
	if t, ok := fields[keywordType]; !ok || t.Kind != yaml.ScalarNode || t.Value != string(KindObject) {
		return nil, newSchemaError(ReasonMalformedDocument, "#", "root must declare type: object")
	}

	root, err := l.build(l.document, "#")
	if err != nil {
		return nil, err
	}

	var capabilities []string
	if c, ok := fields[keywordCapabilities]; ok {
		if capabilities, err = stringList(c, "#/"+keywordCapabilities); err != nil {
			return nil, err
		}
	}

	return &Descriptor{
		root:         root,
		description:  root.description,
		capabilities: capabilities,
	}, nil
}

type loader struct {
	document *yaml.Node
	// built memoizes nodes so that every reference to the same document
	// location resolves to the same *Node.
	built map[*yaml.Node]*Node
	// visiting holds the nodes on the current resolution path: the ancestors
	// of the node being built plus the reference chain that led to it.
	visiting map[*yaml.Node]bool
}

func (l *loader) build(yn *yaml.Node, pointer string) (*Node, error) {
	yn = deref(yn)
	if n, ok := l.built[yn]; ok {
		return n, nil
	}
	if l.visiting[yn] {
		return nil, newSchemaError(ReasonCyclicReference, pointer, "schema refers back to itself")
	}
	if yn.Kind != yaml.MappingNode {
		return nil, newSchemaError(ReasonMalformedDocument, pointer, "schema node must be a mapping")
	}
	l.visiting[yn] = true
	defer delete(l.visiting, yn)

	fields, err := mappingFields(yn, pointer)
	if err != nil {
		return nil, err
	}

	n := &Node{pointer: pointer}
	if d, ok := fields[keywordDescription]; ok {
		if n.description, err = scalarString(d, pointer+"/"+keywordDescription); err != nil {
			return nil, err
		}
	}

	if r, ok := fields[keywordRef]; ok {
		if err := l.resolveRef(n, r, pointer); err != nil {
			return nil, err
		}
	} else if err := l.buildShape(n, fields, pointer); err != nil {
		return nil, err
	}

	if d, ok := fields[keywordDefault]; ok {
		if err := setDefault(n, d, pointer+"/"+keywordDefault); err != nil {
			return nil, err
		}
	}

	l.built[yn] = n
	return n, nil
}

func (l *loader) resolveRef(n *Node, r *yaml.Node, pointer string) error {
	ref, err := scalarString(r, pointer+"/"+keywordRef)
	if err != nil {
		return err
	}
	target, err := l.lookup(ref)
	if err != nil {
		return newSchemaError(ReasonUnresolvedReference, pointer, "%s: %v", ref, err)
	}
	t, err := l.build(target, ref)
	if err != nil {
		return err
	}
	n.ref = ref
	n.target = t.shape()
	return nil
}

func (l *loader) buildShape(n *Node, fields map[string]*yaml.Node, pointer string) error {
	t, ok := fields[keywordType]
	if !ok {
		return newSchemaError(ReasonUnknownType, pointer, "no type declared")
	}
	if t.Kind != yaml.ScalarNode {
		return newSchemaError(ReasonUnknownType, pointer, "type must be a single kind")
	}
	kind, ok := ParseKind(t.Value)
	if !ok {
		return newSchemaError(ReasonUnknownType, pointer, "unrecognized type %q", t.Value)
	}
	n.kind = kind

	_, hasProperties := fields[keywordProperties]
	_, hasRequired := fields[keywordRequired]
	_, hasItems := fields[keywordItems]
	if kind != KindObject && (hasProperties || hasRequired) {
		return newSchemaError(ReasonMalformedDocument, pointer, "only object schemas may declare properties or required")
	}
	if kind != KindArray && hasItems {
		return newSchemaError(ReasonMalformedDocument, pointer, "only array schemas may declare items")
	}

	switch kind {
	case KindObject:
		return l.buildObject(n, fields, pointer)
	case KindArray:
		items := fields[keywordItems]
		if items == nil {
			return newSchemaError(ReasonMalformedDocument, pointer, "array schema must declare items")
		}
		if deref(items).Kind != yaml.MappingNode {
			return newSchemaError(ReasonMalformedDocument, pointer+"/"+keywordItems, "array schema must declare exactly one items schema")
		}
		item, err := l.build(items, pointer+"/"+keywordItems)
		if err != nil {
			return err
		}
		n.items = item
	}
	return nil
}

func (l *loader) buildObject(n *Node, fields map[string]*yaml.Node, pointer string) error {
	n.properties = map[string]*Node{}
	if props, ok := fields[keywordProperties]; ok {
		props = deref(props)
		propsPointer := pointer + "/" + keywordProperties
		if props.Kind != yaml.MappingNode {
			return newSchemaError(ReasonMalformedDocument, propsPointer, "properties must be a mapping")
		}
		for i := 0; i+1 < len(props.Content); i += 2 {
			name := props.Content[i].Value
			if _, dup := n.properties[name]; dup {
				return newSchemaError(ReasonMalformedDocument, propsPointer, "duplicate property %q", name)
			}
			p, err := l.build(props.Content[i+1], propsPointer+"/"+escapePointerToken(name))
			if err != nil {
				return err
			}
			n.propertyNames = append(n.propertyNames, name)
			n.properties[name] = p
		}
	}

	n.requiredSet = map[string]struct{}{}
	if req, ok := fields[keywordRequired]; ok {
		names, err := stringList(req, pointer+"/"+keywordRequired)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, ok := n.properties[name]; !ok {
				return newSchemaError(ReasonMalformedDocument, pointer+"/"+keywordRequired, "required property %q is not declared", name)
			}
			if _, dup := n.requiredSet[name]; dup {
				continue
			}
			n.requiredSet[name] = struct{}{}
			n.required = append(n.required, name)
		}
	}
	return nil
}

// lookup resolves a local JSON pointer such as "#/properties/env".
func (l *loader) lookup(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("only local references are supported")
	}
	rest := strings.TrimPrefix(ref, "#")
	cur := l.document
	if rest == "" {
		return cur, nil
	}
	if !strings.HasPrefix(rest, "/") {
		return nil, fmt.Errorf("malformed pointer")
	}
	for _, token := range strings.Split(rest[1:], "/") {
		token = unescapePointerToken(token)
		cur = deref(cur)
		switch cur.Kind {
		case yaml.MappingNode:
			var next *yaml.Node
			for i := 0; i+1 < len(cur.Content); i += 2 {
				if cur.Content[i].Value == token {
					next = cur.Content[i+1]
					break
				}
			}
			if next == nil {
				return nil, fmt.Errorf("no such key %q", token)
			}
			cur = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(cur.Content) {
				return nil, fmt.Errorf("no such index %q", token)
			}
			cur = cur.Content[idx]
		default:
			return nil, fmt.Errorf("cannot descend into scalar at %q", token)
		}
	}
	return cur, nil
}

func setDefault(n *Node, d *yaml.Node, pointer string) error {
	var raw interface{}
	if err := d.Decode(&raw); err != nil {
		return newSchemaError(ReasonMalformedDocument, pointer, "%v", err)
	}
	v, err := normalize(raw)
	if err != nil {
		return newSchemaError(ReasonMalformedDocument, pointer, "%v", err)
	}
	coerced, ok := coerceDefault(v, n.Kind())
	if !ok {
		return newSchemaError(ReasonMalformedDocument, pointer, "default %v is not a valid %s", raw, n.Kind())
	}
	n.defaultValue = coerced
	n.hasDefault = true
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func mappingFields(n *yaml.Node, pointer string) (map[string]*yaml.Node, error) {
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, dup := fields[key]; dup {
			return nil, newSchemaError(ReasonMalformedDocument, pointer, "duplicate key %q", key)
		}
		fields[key] = deref(n.Content[i+1])
	}
	return fields, nil
}

func scalarString(n *yaml.Node, pointer string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", newSchemaError(ReasonMalformedDocument, pointer, "expected a string")
	}
	return n.Value, nil
}

func stringList(n *yaml.Node, pointer string) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, newSchemaError(ReasonMalformedDocument, pointer, "expected a list of strings")
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := scalarString(deref(item), pointer)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func escapePointerToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapePointerToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}
