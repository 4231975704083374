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

package schema_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

var _ = Describe("Load", func() {
	Context("The sparkcluster schema", func() {
		var d *schema.Descriptor

		BeforeEach(func() {
			var err error
			d, err = schema.Load(v1.SparkClusterSchema)
			Expect(err).NotTo(HaveOccurred())
		})

		It("Should keep the declaration order of properties", func() {
			Expect(d.Root().PropertyNames()).To(Equal([]string{
				"name", "workerNodes", "masterNodes", "customImage", "memory", "cpu",
				"sparkConfigurationMap", "env", "sparkConfiguration", "downloadData",
			}))
		})

		It("Should expose the declared capability and description", func() {
			Expect(d.Capabilities()).To(Equal([]string{schema.CapabilityEntityInfo}))
			Expect(d.Implements(schema.CapabilityEntityInfo)).To(BeTrue())
			Expect(d.Description()).To(Equal("A Spark cluster configuration"))
		})

		It("Should store typed defaults", func() {
			masterNodes, _ := d.Root().Property("masterNodes")
			def, ok := masterNodes.Default()
			Expect(ok).To(BeTrue())
			Expect(def).To(Equal(int64(1)))

			image, _ := d.Root().Property("customImage")
			def, ok = image.Default()
			Expect(ok).To(BeTrue())
			Expect(def).To(Equal("jkremser/openshift-spark:2.3-latest"))
		})

		It("Should resolve sparkConfiguration to the env node", func() {
			env, _ := d.Root().Property("env")
			alias, _ := d.Root().Property("sparkConfiguration")
			Expect(alias.IsAlias()).To(BeTrue())
			Expect(alias.Ref()).To(Equal("#/properties/env"))
			Expect(alias.Target()).To(BeIdenticalTo(env))
			Expect(alias.Kind()).To(Equal(schema.KindArray))
			Expect(alias.Items().Required()).To(Equal([]string{"name", "value"}))
		})

		It("Should have no required properties at the root", func() {
			Expect(d.Root().Required()).To(BeEmpty())
		})
	})

	Context("Integer defaults written as strings", func() {
		It("Should coerce numeric strings", func() {
			d, err := schema.Load([]byte(`
type: object
properties:
  workerNodes:
    type: integer
    default: "3"
`))
			Expect(err).NotTo(HaveOccurred())
			n, _ := d.Root().Property("workerNodes")
			def, _ := n.Default()
			Expect(def).To(Equal(int64(3)))
		})

		It("Should reject non-numeric strings", func() {
			_, err := schema.Load([]byte(`
type: object
properties:
  workerNodes:
    type: integer
    default: three
`))
			Expect(err).To(MatchError(schema.ErrMalformedDocument))
		})
	})

	Context("References", func() {
		It("Should follow reference chains to the concrete node", func() {
			d, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a": {"$ref": "#/properties/b"},
    "b": {"$ref": "#/properties/c"},
    "c": {"type": "string"}
  }
}`))
			Expect(err).NotTo(HaveOccurred())
			a, _ := d.Root().Property("a")
			c, _ := d.Root().Property("c")
			Expect(a.Target()).To(BeIdenticalTo(c))
		})

		It("Should unescape pointer tokens", func() {
			d, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a/b": {"type": "integer"},
    "c": {"$ref": "#/properties/a~1b"}
  }
}`))
			Expect(err).NotTo(HaveOccurred())
			c, _ := d.Root().Property("c")
			Expect(c.Kind()).To(Equal(schema.KindInteger))
		})

		It("Should fail on references that point at each other", func() {
			_, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a": {"$ref": "#/properties/b"},
    "b": {"$ref": "#/properties/a"}
  }
}`))
			Expect(err).To(MatchError(schema.ErrCyclicReference))
		})

		It("Should fail on references to an enclosing node", func() {
			_, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "children": {"type": "array", "items": {"$ref": "#"}}
  }
}`))
			Expect(err).To(MatchError(schema.ErrCyclicReference))
		})

		It("Should fail on a self reference", func() {
			_, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a": {"$ref": "#/properties/a"}
  }
}`))
			Expect(err).To(MatchError(schema.ErrCyclicReference))
		})

		It("Should fail on missing targets", func() {
			_, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a": {"$ref": "#/properties/missing"}
  }
}`))
			Expect(err).To(MatchError(schema.ErrUnresolvedReference))
		})

		It("Should fail on references to other documents", func() {
			_, err := schema.Load([]byte(`{
  "type": "object",
  "properties": {
    "a": {"$ref": "other.json#/properties/a"}
  }
}`))
			Expect(err).To(MatchError(schema.ErrUnresolvedReference))
		})
	})

	Context("Malformed documents", func() {
		DescribeTable("Should be rejected",
			func(text string, expected error) {
				_, err := schema.Load([]byte(text))
				Expect(err).To(MatchError(expected))
			},
			Entry("invalid syntax", `{"type": "object",`, schema.ErrMalformedDocument),
			Entry("empty document", ``, schema.ErrMalformedDocument),
			Entry("root is not an object", `{"type": "string"}`, schema.ErrMalformedDocument),
			Entry("root is a list", `[1, 2]`, schema.ErrMalformedDocument),
			Entry("unknown type", `{"type": "object", "properties": {"a": {"type": "number"}}}`, schema.ErrUnknownType),
			Entry("missing type", `{"type": "object", "properties": {"a": {"description": "x"}}}`, schema.ErrUnknownType),
			Entry("type list", `{"type": "object", "properties": {"a": {"type": ["string", "null"]}}}`, schema.ErrUnknownType),
			Entry("array without items", `{"type": "object", "properties": {"a": {"type": "array"}}}`, schema.ErrMalformedDocument),
			Entry("tuple items", `{"type": "object", "properties": {"a": {"type": "array", "items": [{"type": "string"}]}}}`, schema.ErrMalformedDocument),
			Entry("undeclared required property", `{"type": "object", "properties": {"a": {"type": "string"}}, "required": ["b"]}`, schema.ErrMalformedDocument),
			Entry("default of the wrong kind", `{"type": "object", "properties": {"a": {"type": "string", "default": 1}}}`, schema.ErrMalformedDocument),
			Entry("items on a string", `{"type": "object", "properties": {"a": {"type": "string", "items": {"type": "string"}}}}`, schema.ErrMalformedDocument),
		)
	})

	It("Should report where the error happened", func() {
		_, err := schema.Load([]byte(`{"type": "object", "properties": {"env": {"type": "array", "items": {"type": "float"}}}}`))
		var schemaErr *schema.SchemaError
		Expect(err).To(BeAssignableToTypeOf(schemaErr))
		schemaErr = err.(*schema.SchemaError)
		Expect(schemaErr.Reason).To(Equal(schema.ReasonUnknownType))
		Expect(schemaErr.Pointer).To(Equal("#/properties/env/items"))
	})
})
