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
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

var _ = Describe("Registry", func() {
	var registry *schema.Registry

	BeforeEach(func() {
		registry = schema.NewRegistry()
	})

	Context("Before a schema is loaded", func() {
		It("Should refuse to validate", func() {
			Expect(registry.Loaded()).To(BeFalse())
			_, err := registry.Validate(map[string]interface{}{"name": "a"})
			Expect(err).To(MatchError(schema.ErrNotLoaded))
			_, err = registry.Descriptor()
			Expect(err).To(MatchError(schema.ErrNotLoaded))
		})

		It("Should stay unloaded when the first load fails", func() {
			_, err := registry.Load([]byte(`{"type": "string"}`))
			Expect(err).To(MatchError(schema.ErrMalformedDocument))
			Expect(registry.Loaded()).To(BeFalse())
		})
	})

	Context("After a schema is loaded", func() {
		var loaded *schema.Descriptor

		BeforeEach(func() {
			var err error
			loaded, err = registry.Load(v1.SparkClusterSchema)
			Expect(err).NotTo(HaveOccurred())
		})

		It("Should validate against the active descriptor", func() {
			inst, err := registry.Validate(map[string]interface{}{"name": "cluster1", "workerNodes": 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.GetName()).To(Equal("cluster1"))
			Expect(intField(inst, "masterNodes")).To(Equal(int64(1)))
		})

		It("Should keep the previous descriptor when a reload fails", func() {
			_, err := registry.Load([]byte(`{"type": "object", "properties": {"a": {"$ref": "#/properties/a"}}}`))
			Expect(err).To(MatchError(schema.ErrCyclicReference))

			active, err := registry.Descriptor()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeIdenticalTo(loaded))
		})

		It("Should swap in a reloaded descriptor without affecting the old one", func() {
			reloaded, err := registry.Load([]byte(`
type: object
properties:
  name: {type: string}
  masterNodes: {type: integer, default: 3}
`))
			Expect(err).NotTo(HaveOccurred())

			active, _ := registry.Descriptor()
			Expect(active).To(BeIdenticalTo(reloaded))

			inst, err := loaded.Validate(map[string]interface{}{})
			Expect(err).NotTo(HaveOccurred())
			Expect(intField(inst, "masterNodes")).To(Equal(int64(1)))

			inst, err = registry.Validate(map[string]interface{}{})
			Expect(err).NotTo(HaveOccurred())
			Expect(intField(inst, "masterNodes")).To(Equal(int64(3)))
		})

		It("Should serve concurrent validations while reloading", func() {
			doc := map[string]interface{}{
				"name": "cluster1",
				"env":  []interface{}{map[string]interface{}{"name": "A", "value": "B"}},
			}

			var wg sync.WaitGroup
			errs := make(chan error, 64)
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for j := 0; j < 50; j++ {
						inst, err := registry.Validate(doc)
						if err != nil {
							errs <- err
							return
						}
						Expect(inst.GetName()).To(Equal("cluster1"))
					}
				}()
			}
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for j := 0; j < 10; j++ {
						_, err := registry.Load(v1.SparkClusterSchema)
						Expect(err).NotTo(HaveOccurred())
					}
				}()
			}
			wg.Wait()
			close(errs)
			Expect(errs).To(BeEmpty())
		})
	})
})

func intField(inst *schema.Instance, name string) int64 {
	n, _ := inst.GetInt64(name)
	return n
}
