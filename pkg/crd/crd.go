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

package crd

import (
	"strings"

	"github.com/pkg/errors"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

// CRD metadata.
const (
	Plural    = "sparkclusters"
	Singular  = "sparkcluster"
	ShortName = "sc"
	Kind      = "SparkCluster"
	ListKind  = Kind + "List"
	Group     = "radanalytics.io"
	Version   = "v1"
	FullName  = Plural + "." + Group
)

// Names identifies the custom resource a definition is generated for.
type Names struct {
	Group     string
	Version   string
	Kind      string
	Plural    string
	Singular  string
	ShortName string
}

// DefaultNames returns the names of the SparkCluster resource.
func DefaultNames() Names {
	return Names{
		Group:     v1.GroupVersion.Group,
		Version:   v1.GroupVersion.Version,
		Kind:      Kind,
		Plural:    Plural,
		Singular:  Singular,
		ShortName: ShortName,
	}
}

func (n Names) fullName() string {
	return n.Plural + "." + n.Group
}

// NewCustomResourceDefinition generates a CustomResourceDefinition whose spec
// schema is the given descriptor. Defaults are stripped from the generated
// schema so the API server leaves defaulting to the schema owner.
func NewCustomResourceDefinition(desc *schema.Descriptor, names Names) (*apiextensionsv1.CustomResourceDefinition, error) {
	if names.Kind == "" || names.Group == "" || names.Version == "" {
		return nil, errors.Errorf("incomplete resource names: %+v", names)
	}
	if names.Plural == "" {
		names.Plural = pluralize(names.Kind)
	}
	if names.Singular == "" {
		names.Singular = strings.ToLower(names.Kind)
	}

	spec, err := desc.ToJSONSchemaProps(true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert schema of %s", names.Kind)
	}

	var shortNames []string
	if names.ShortName != "" {
		shortNames = []string{names.ShortName}
	}

	return &apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{
			APIVersion: apiextensionsv1.SchemeGroupVersion.String(),
			Kind:       "CustomResourceDefinition",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: names.fullName(),
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: names.Group,
			Scope: apiextensionsv1.NamespaceScoped,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Plural:     names.Plural,
				Singular:   names.Singular,
				ShortNames: shortNames,
				Kind:       names.Kind,
				ListKind:   names.Kind + "List",
			},
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
				{
					Name:    names.Version,
					Served:  true,
					Storage: true,
					Schema: &apiextensionsv1.CustomResourceValidation{
						OpenAPIV3Schema: wrapSpec(spec),
					},
					Subresources: &apiextensionsv1.CustomResourceSubresources{
						Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
					},
					AdditionalPrinterColumns: printerColumns(spec),
				},
			},
		},
	}, nil
}

func wrapSpec(spec *apiextensionsv1.JSONSchemaProps) *apiextensionsv1.JSONSchemaProps {
	return &apiextensionsv1.JSONSchemaProps{
		Type: "object",
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"apiVersion": {Type: "string"},
			"kind":       {Type: "string"},
			"metadata":   {Type: "object"},
			"spec":       *spec,
			"status": {
				Type:                   "object",
				XPreserveUnknownFields: ptr.To(true),
			},
		},
		Required: []string{"spec"},
	}
}

// printerColumns lists the top-level integer properties of the spec followed
// by the state and the age of the resource.
func printerColumns(spec *apiextensionsv1.JSONSchemaProps) []apiextensionsv1.CustomResourceColumnDefinition {
	var columns []apiextensionsv1.CustomResourceColumnDefinition
	for _, name := range []string{"workerNodes", "masterNodes"} {
		prop, ok := spec.Properties[name]
		if !ok || prop.Type != string(schema.KindInteger) {
			continue
		}
		columns = append(columns, apiextensionsv1.CustomResourceColumnDefinition{
			Name:     columnName(name),
			Type:     "integer",
			JSONPath: ".spec." + name,
		})
	}
	return append(columns,
		apiextensionsv1.CustomResourceColumnDefinition{
			Name:     "Status",
			Type:     "string",
			JSONPath: ".status.state",
		},
		apiextensionsv1.CustomResourceColumnDefinition{
			Name:     "Age",
			Type:     "date",
			JSONPath: ".metadata.creationTimestamp",
		},
	)
}

func columnName(property string) string {
	switch property {
	case "workerNodes":
		return "Workers"
	case "masterNodes":
		return "Masters"
	}
	return property
}

func pluralize(kind string) string {
	return strings.ToLower(kind) + "s"
}
