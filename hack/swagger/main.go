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


package main

import (
	"encoding/json"
	"fmt"

	"k8s.io/apiextensions-apiserver/pkg/apis/apiextensions"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apiextensions-apiserver/pkg/apiserver/validation"
	"k8s.io/klog/v2"
	builderutil "k8s.io/kube-openapi/pkg/openapiconv"
	"k8s.io/kube-openapi/pkg/validation/spec"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/pkg/crd"
)

// Generate the SparkCluster OpenAPI specification from the embedded schema.
func main() {
	desc, err := v1.SparkClusterDescriptor()
	if err != nil {
		klog.Fatal(err.Error())
	}

	// Defaults are kept: clients generated from this document fill them in.
	props, err := desc.ToJSONSchemaProps(false)
	if err != nil {
		klog.Fatal(err.Error())
	}

	internal := &apiextensions.JSONSchemaProps{}
	if err := apiextensionsv1.Convert_v1_JSONSchemaProps_To_apiextensions_JSONSchemaProps(props, internal, nil); err != nil {
		klog.Fatal(err.Error())
	}
	specSchema := &spec.Schema{}
	if err := validation.ConvertJSONSchemaPropsWithPostProcess(internal, specSchema, validation.StripUnsupportedFormatsPostProcess); err != nil {
		klog.Fatal(err.Error())
	}

	swagger := spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: "2.0",
			Definitions: spec.Definitions{
				definitionName(): *specSchema,
			},
			Paths: &spec.Paths{Paths: map[string]spec.PathItem{}},
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:   "Spark Cluster OpenAPI Spec",
					Version: "unversioned",
				},
			},
		},
	}
	swaggerOpenAPIV3 := builderutil.ConvertV2ToV3(&swagger)

	jsonBytes, err := json.MarshalIndent(swaggerOpenAPIV3, "", "  ")
	if err != nil {
		klog.Fatal(err.Error())
	}
	fmt.Println(string(jsonBytes))
}

// definitionName follows the reversed-domain naming of Kubernetes definitions,
// e.g. io.radanalytics.v1.SparkClusterSpec.
func definitionName() string {
	return fmt.Sprintf("io.radanalytics.%s.%sSpec", v1.GroupVersion.Version, crd.Kind)
}
