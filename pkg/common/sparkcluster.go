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

package common

const (
	// ConfigMapConfigKey is the ConfigMap data key holding a cluster document.
	ConfigMapConfigKey = "config"

	// LabelKind is the label selecting ConfigMaps that describe Spark clusters.
	LabelKind = "radanalytics.io/kind"

	// LabelKindCluster is the value of LabelKind for Spark clusters.
	LabelKindCluster = "cluster"
)

// DefaultSparkImage is the image Spark masters and workers run when a cluster
// does not name one.
const DefaultSparkImage = "jkremser/openshift-spark:2.3-latest"

const (
	// EnvPrefix is the prefix of environment variables read by the CLI.
	EnvPrefix = "SPARK_CLUSTER"

	// DefaultMetricsBindAddress disables the metrics endpoint.
	DefaultMetricsBindAddress = "0"
)
