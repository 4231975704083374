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

package util

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/spark-cluster-schema/pkg/common"
)

// SplitYAMLDocuments splits a stream of "---" separated YAML documents.
// Documents that are empty or contain only comments are skipped.
func SplitYAMLDocuments(data []byte) ([][]byte, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))
	var docs [][]byte
	for {
		doc, err := reader.Read()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read yaml document")
		}
		if isEmptyYAML(doc) {
			continue
		}
		docs = append(docs, doc)
	}
}

func isEmptyYAML(doc []byte) bool {
	var v interface{}
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return false
	}
	return v == nil
}

// GroupVersionKindOf returns the apiVersion and kind declared by a YAML or
// JSON document. Both are empty when the document does not declare them.
func GroupVersionKindOf(doc []byte) (schema.GroupVersionKind, error) {
	var meta struct {
		APIVersion string `json:"apiVersion"`
		Kind       string `json:"kind"`
	}
	if err := yaml.Unmarshal(doc, &meta); err != nil {
		return schema.GroupVersionKind{}, errors.Wrap(err, "failed to decode document header")
	}
	if meta.Kind == "" {
		return schema.GroupVersionKind{}, nil
	}
	return schema.FromAPIVersionAndKind(meta.APIVersion, meta.Kind), nil
}

// IsSparkClusterConfigMap returns whether the given ConfigMap describes a Spark cluster.
func IsSparkClusterConfigMap(cm *corev1.ConfigMap) bool {
	return cm.Labels[common.LabelKind] == common.LabelKindCluster
}
