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

package sparkcluster_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/internal/metrics"
	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
	"github.com/kubeflow/spark-cluster-schema/pkg/common"
	"github.com/kubeflow/spark-cluster-schema/pkg/features"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

func loadConfigMap(name string) *corev1.ConfigMap {
	data, err := os.ReadFile(filepath.Join("..", "..", "examples", name))
	Expect(err).NotTo(HaveOccurred())
	cm := &corev1.ConfigMap{}
	Expect(yaml.Unmarshal(data, cm)).To(Succeed())
	return cm
}

var _ = Describe("Parser", func() {
	var parser *sparkcluster.Parser

	BeforeEach(func() {
		var err error
		parser, err = sparkcluster.NewDefaultParser(nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("ConfigMap", func() {
		It("Should parse the cluster example", func() {
			cluster, err := parser.ParseConfigMap(loadConfigMap("cluster.yaml"))
			Expect(err).NotTo(HaveOccurred())

			Expect(cluster.Name).To(Equal("my-spark-cluster"))
			Expect(cluster.Spec.Name).To(Equal("my-spark-cluster"))
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(2))))
			Expect(cluster.Spec.MasterNodes).To(HaveValue(Equal(int32(1))))
			Expect(cluster.Spec.CustomImage).To(Equal(common.DefaultSparkImage))
			Expect(cluster.Labels).To(HaveKeyWithValue(common.LabelKind, common.LabelKindCluster))
			Expect(cluster.Kind).To(Equal("SparkCluster"))
			Expect(cluster.APIVersion).To(Equal("radanalytics.io/v1"))
			Expect(cluster.Status.State).To(Equal(v1.SparkClusterStateInitial))
		})

		It("Should parse the prepared data example", func() {
			cluster, err := parser.ParseConfigMap(loadConfigMap("with-prepared-data.yaml"))
			Expect(err).NotTo(HaveOccurred())

			Expect(cluster.Spec.MasterNodes).To(HaveValue(Equal(int32(1))))
			Expect(cluster.Spec.DownloadData).To(HaveLen(2))
			Expect(cluster.Spec.DownloadData[0].To).To(HaveValue(Equal("/tmp/")))
		})

		It("Should fail without the config key", func() {
			cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "empty", Namespace: "default"}}
			_, err := parser.ParseConfigMap(cm)
			Expect(err).To(MatchError(ContainSubstring(`has no "config" key`)))
		})

		It("Should report the invalid field", func() {
			cm := &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{Name: "broken", Namespace: "default"},
				Data:       map[string]string{common.ConfigMapConfigKey: "env:\n  - name: A\n"},
			}
			_, err := parser.ParseConfigMap(cm)
			Expect(err).To(MatchError(schema.ErrMissingRequired))
			Expect(err.Error()).To(ContainSubstring("env[0].value"))
			Expect(err.Error()).To(ContainSubstring("default/broken"))
		})
	})

	Context("YAML", func() {
		var config string

		BeforeEach(func() {
			config = loadConfigMap("cluster.yaml").Data[common.ConfigMapConfigKey]
		})

		It("Should name the cluster after the supplied name", func() {
			cluster, err := parser.ParseYAML([]byte(config), "foo")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Name).To(Equal("foo"))
			Expect(cluster.Spec.Name).To(Equal("foo"))
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(2))))
			Expect(cluster.Spec.CustomImage).To(Equal(common.DefaultSparkImage))
		})

		It("Should prefer the name in the document", func() {
			cluster, err := parser.ParseYAML([]byte("name: inner\n"), "outer")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.Name).To(Equal("inner"))
		})

		It("Should produce equal clusters for equal inputs", func() {
			fromYAML, err := parser.ParseYAML([]byte(config), "my-spark-cluster")
			Expect(err).NotTo(HaveOccurred())
			fromConfigMap, err := parser.ParseConfigMap(loadConfigMap("cluster.yaml"))
			Expect(err).NotTo(HaveOccurred())
			other, err := parser.ParseYAML([]byte(config), "foobar")
			Expect(err).NotTo(HaveOccurred())

			Expect(fromYAML.Spec).To(Equal(fromConfigMap.Spec))
			Expect(other.Spec).NotTo(Equal(fromConfigMap.Spec))
		})

		It("Should fail on documents that are not objects", func() {
			_, err := parser.ParseYAML([]byte("- a\n- b\n"), "foo")
			Expect(err).To(HaveOccurred())
		})

		It("Should fail on type mismatches", func() {
			_, err := parser.ParseYAML([]byte("workerNodes: many\n"), "foo")
			Expect(err).To(MatchError(schema.ErrTypeMismatch))
		})

		It("Should prune unknown fields by default", func() {
			cluster, err := parser.ParseYAML([]byte("replicas: 3\n"), "foo")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(1))))
		})

		It("Should reject unknown fields when StrictUnknownFields is enabled", func() {
			Expect(features.SetEnable(features.StrictUnknownFields, true)).To(Succeed())
			DeferCleanup(features.SetEnable, features.StrictUnknownFields, false)

			_, err := parser.ParseYAML([]byte("replicas: 3\n"), "foo")
			Expect(err).To(MatchError(schema.ErrUnknownField))
		})
	})

	Context("Unstructured", func() {
		It("Should parse a SparkCluster resource", func() {
			data, err := os.ReadFile(filepath.Join("..", "..", "examples", "sparkcluster.yaml"))
			Expect(err).NotTo(HaveOccurred())
			obj := &unstructured.Unstructured{}
			Expect(yaml.Unmarshal(data, &obj.Object)).To(Succeed())
			obj.SetNamespace("spark")

			cluster, err := parser.ParseUnstructured(obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Name).To(Equal("my-cluster"))
			Expect(cluster.Namespace).To(Equal("spark"))
			Expect(cluster.Spec.Name).To(Equal("my-cluster"))
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(3))))
			Expect(cluster.Spec.MasterNodes).To(HaveValue(Equal(int32(1))))
			Expect(cluster.Spec.Env).To(Equal([]v1.NameValue{{Name: ptr.To("SPARK_WORKER_CORES"), Value: ptr.To("2")}}))
			Expect(cluster.Spec.SparkConfiguration).To(Equal([]v1.NameValue{{Name: ptr.To("spark.executor.memory"), Value: ptr.To("1g")}}))
			Expect(cluster.Status.State).To(Equal(v1.SparkClusterStateInitial))

			Expect(obj.Object["spec"]).NotTo(HaveKey("masterNodes"))
		})

		It("Should accept a resource without spec", func() {
			obj := &unstructured.Unstructured{}
			obj.SetAPIVersion("radanalytics.io/v1")
			obj.SetKind("SparkCluster")
			obj.SetName("bare")

			cluster, err := parser.ParseUnstructured(obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.Name).To(Equal("bare"))
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(1))))
		})

		It("Should fail when spec is not an object", func() {
			obj := &unstructured.Unstructured{Object: map[string]interface{}{"spec": "nope"}}
			_, err := parser.ParseUnstructured(obj)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Typed object", func() {
		It("Should default a typed SparkCluster without modifying it", func() {
			cluster := &v1.SparkCluster{ObjectMeta: metav1.ObjectMeta{Name: "typed"}}
			cluster.Spec.WorkerNodes = ptr.To[int32](4)

			parsed, err := parser.ParseObject(cluster)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.Spec.Name).To(Equal("typed"))
			Expect(parsed.Spec.WorkerNodes).To(HaveValue(Equal(int32(4))))
			Expect(parsed.Spec.MasterNodes).To(HaveValue(Equal(int32(1))))
			Expect(cluster.Spec.MasterNodes).To(BeNil())
		})
	})

	Context("Typed decoding", func() {
		It("Should keep an explicit zero instead of the default", func() {
			cluster, err := parser.ParseYAML([]byte("workerNodes: 0\nmasterNodes: 0\n"), "zero")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(BeZero()))
			Expect(cluster.Spec.MasterNodes).To(HaveValue(BeZero()))

			typed := &v1.SparkCluster{ObjectMeta: metav1.ObjectMeta{Name: "zero"}}
			typed.Spec.WorkerNodes = ptr.To[int32](0)
			parsed, err := parser.ParseObject(typed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.Spec.WorkerNodes).To(HaveValue(BeZero()))
		})

		It("Should reject integers that do not fit the typed spec", func() {
			_, err := parser.ParseYAML([]byte("workerNodes: 5000000000\n"), "huge")
			Expect(err).To(MatchError(schema.ErrValueOutOfRange))
			Expect(err.Error()).To(ContainSubstring("workerNodes"))
		})

		It("Should report missing element fields of a typed spec", func() {
			typed := &v1.SparkCluster{ObjectMeta: metav1.ObjectMeta{Name: "typed"}}
			typed.Spec.Env = []v1.NameValue{{Name: ptr.To("X")}}
			_, err := parser.ParseObject(typed)
			Expect(err).To(MatchError(schema.ErrMissingRequired))
			Expect(err.Error()).To(ContainSubstring("env[0].value"))
		})
	})

	Context("Schema", func() {
		It("Should keep the active schema when a load fails", func() {
			Expect(parser.LoadSchema([]byte("type: string\n"))).NotTo(Succeed())

			cluster, err := parser.ParseYAML([]byte(""), "still-works")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.CustomImage).To(Equal(common.DefaultSparkImage))
		})

		It("Should refuse to parse before a schema is loaded", func() {
			p := sparkcluster.NewParser(schema.NewRegistry(), nil)
			_, err := p.ParseYAML([]byte("name: a\n"), "a")
			Expect(err).To(MatchError(schema.ErrNotLoaded))
		})

		It("Should use a replaced schema", func() {
			Expect(parser.LoadSchema([]byte(`
type: object
properties:
  name: {type: string}
  workerNodes: {type: integer, default: 5}
`))).To(Succeed())

			cluster, err := parser.ParseYAML(nil, "custom")
			Expect(err).NotTo(HaveOccurred())
			Expect(cluster.Spec.WorkerNodes).To(HaveValue(Equal(int32(5))))
			Expect(cluster.Spec.MasterNodes).To(BeNil())
		})
	})

	Context("Metrics", func() {
		It("Should count validations and schema loads", func() {
			m := metrics.NewSparkClusterMetrics("", nil)
			registry := prometheus.NewRegistry()
			m.RegisterTo(registry)

			p, err := sparkcluster.NewDefaultParser(m)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.LoadSchema([]byte("{"))).NotTo(Succeed())

			_, err = p.ParseYAML([]byte("name: a\n"), "")
			Expect(err).NotTo(HaveOccurred())
			_, err = p.ParseYAML([]byte("workerNodes: x\n"), "")
			Expect(err).To(HaveOccurred())

			expected := `
# HELP spark_cluster_schema_load_count Total number of SparkCluster schema loads
# TYPE spark_cluster_schema_load_count counter
spark_cluster_schema_load_count{result="failure"} 1
spark_cluster_schema_load_count{result="success"} 1
# HELP spark_cluster_validation_count Total number of validated SparkCluster documents
# TYPE spark_cluster_validation_count counter
spark_cluster_validation_count{result="failure"} 1
spark_cluster_validation_count{result="success"} 1
`
			Expect(testutil.GatherAndCompare(registry, strings.NewReader(expected),
				"spark_cluster_schema_load_count", "spark_cluster_validation_count")).To(Succeed())
		})
	})
})

var _ = Describe("NewParserFromFile", func() {
	It("Should use the embedded schema without a path", func() {
		p, err := sparkcluster.NewParserFromFile("", nil)
		Expect(err).NotTo(HaveOccurred())
		d, err := p.Registry().Descriptor()
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Implements(schema.CapabilityEntityInfo)).To(BeTrue())
	})

	It("Should load the schema file", func() {
		p, err := sparkcluster.NewParserFromFile(filepath.Join("..", "..", "api", "v1", "sparkcluster.schema.json"), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Registry().Loaded()).To(BeTrue())
	})

	It("Should fail on a missing file", func() {
		_, err := sparkcluster.NewParserFromFile(filepath.Join(GinkgoT().TempDir(), "missing.json"), nil)
		Expect(err).To(HaveOccurred())
	})
})
