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

package sparkcluster

import (
	"os"
	"time"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/yaml"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/internal/metrics"
	"github.com/kubeflow/spark-cluster-schema/pkg/common"
	"github.com/kubeflow/spark-cluster-schema/pkg/features"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

var (
	logger = ctrl.Log.WithName("sparkcluster-parser")
)

// Parser turns cluster documents into SparkCluster objects using the active
// descriptor of a registry.
type Parser struct {
	registry *schema.Registry
	metrics  *metrics.SparkClusterMetrics
}

// NewParser creates a parser backed by registry. Metrics may be nil.
func NewParser(registry *schema.Registry, m *metrics.SparkClusterMetrics) *Parser {
	return &Parser{
		registry: registry,
		metrics:  m,
	}
}

// NewDefaultParser creates a parser backed by the embedded SparkCluster schema.
func NewDefaultParser(m *metrics.SparkClusterMetrics) (*Parser, error) {
	p := NewParser(schema.NewRegistry(), m)
	if err := p.LoadSchema(v1.SparkClusterSchema); err != nil {
		return nil, err
	}
	return p, nil
}

// NewParserFromFile creates a parser backed by the schema file at path, or by
// the embedded SparkCluster schema when path is empty.
func NewParserFromFile(path string, m *metrics.SparkClusterMetrics) (*Parser, error) {
	if path == "" {
		return NewDefaultParser(m)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	p := NewParser(schema.NewRegistry(), m)
	if err := p.LoadSchema(text); err != nil {
		return nil, err
	}
	return p, nil
}

// Registry returns the registry the parser reads its descriptor from.
func (p *Parser) Registry() *schema.Registry {
	return p.registry
}

// LoadSchema loads text into the registry. On failure the previously active
// descriptor stays in place.
func (p *Parser) LoadSchema(text []byte) error {
	_, err := p.registry.Load(text)
	p.metrics.HandleSchemaLoad(err)
	if err != nil {
		return errors.Wrap(err, "failed to load spark cluster schema")
	}
	return nil
}

// Validate validates doc against the active descriptor.
func (p *Parser) Validate(doc map[string]interface{}) (*schema.Instance, error) {
	opts := schema.ValidateOptions{
		RejectUnknownFields: features.Enabled(features.StrictUnknownFields),
	}
	start := time.Now()
	inst, err := p.registry.ValidateWithOptions(doc, opts)
	p.metrics.HandleValidation(err, time.Since(start))
	return inst, err
}

// ParseYAML parses a YAML or JSON cluster document. When the document does not
// name the cluster, name is used.
func (p *Parser) ParseYAML(text []byte, name string) (*v1.SparkCluster, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode spark cluster document")
	}
	spec, err := p.parseSpec(doc, name)
	if err != nil {
		return nil, err
	}
	return newSparkCluster(metav1.ObjectMeta{Name: spec.Name}, spec), nil
}

// ParseConfigMap parses the cluster document stored under the config key of cm.
// The cluster name defaults to the ConfigMap name.
func (p *Parser) ParseConfigMap(cm *corev1.ConfigMap) (*v1.SparkCluster, error) {
	text, ok := cm.Data[common.ConfigMapConfigKey]
	if !ok {
		return nil, errors.Errorf("configmap %s/%s has no %q key", cm.Namespace, cm.Name, common.ConfigMapConfigKey)
	}
	logger.V(1).Info("Parsing spark cluster configmap", "name", cm.Name, "namespace", cm.Namespace)

	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode configmap %s/%s, check the %q key for typos", cm.Namespace, cm.Name, common.ConfigMapConfigKey)
	}
	spec, err := p.parseSpec(doc, cm.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid spark cluster in configmap %s/%s", cm.Namespace, cm.Name)
	}

	meta := metav1.ObjectMeta{
		Name:        cm.Name,
		Namespace:   cm.Namespace,
		Labels:      cm.Labels,
		Annotations: cm.Annotations,
	}
	return newSparkCluster(meta, spec), nil
}

// ParseUnstructured validates the spec of a SparkCluster custom resource. The
// cluster name defaults to the object name.
func (p *Parser) ParseUnstructured(obj *unstructured.Unstructured) (*v1.SparkCluster, error) {
	doc, _, err := unstructured.NestedMap(obj.Object, "spec")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid spec of %s %s/%s", obj.GetKind(), obj.GetNamespace(), obj.GetName())
	}

	rest := obj.DeepCopy()
	unstructured.RemoveNestedField(rest.Object, "spec")
	cluster := &v1.SparkCluster{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(rest.Object, cluster); err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s %s/%s", obj.GetKind(), obj.GetNamespace(), obj.GetName())
	}

	spec, err := p.parseSpec(doc, obj.GetName())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid spark cluster %s/%s", obj.GetNamespace(), obj.GetName())
	}
	cluster.Spec = *spec
	setTypeMeta(cluster)
	if cluster.Status.State == "" {
		cluster.Status.State = v1.SparkClusterStateInitial
	}
	return cluster, nil
}

// ParseObject validates and defaults the spec of a typed SparkCluster. The
// returned object is a copy.
func (p *Parser) ParseObject(cluster *v1.SparkCluster) (*v1.SparkCluster, error) {
	doc, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&cluster.Spec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert spec of %s/%s", cluster.Namespace, cluster.Name)
	}
	spec, err := p.parseSpec(doc, cluster.Name)
	if err != nil {
		return nil, err
	}
	out := cluster.DeepCopy()
	out.Spec = *spec
	return out, nil
}

func (p *Parser) parseSpec(doc map[string]interface{}, name string) (*v1.SparkClusterSpec, error) {
	inst, err := p.Validate(doc)
	if err != nil {
		return nil, err
	}
	if inst.GetName() == "" && name != "" {
		inst = inst.WithName(name)
	}

	spec, err := v1.SpecFromInstance(inst)
	if err != nil {
		return nil, err
	}
	logger.V(1).Info("Parsed spark cluster", "name", spec.Name, "fields", inst.Fields())
	return spec, nil
}

func newSparkCluster(meta metav1.ObjectMeta, spec *v1.SparkClusterSpec) *v1.SparkCluster {
	cluster := &v1.SparkCluster{
		ObjectMeta: meta,
		Spec:       *spec,
		Status: v1.SparkClusterStatus{
			State: v1.SparkClusterStateInitial,
		},
	}
	setTypeMeta(cluster)
	return cluster
}

func setTypeMeta(cluster *v1.SparkCluster) {
	cluster.APIVersion = v1.GroupVersion.String()
	cluster.Kind = "SparkCluster"
}
