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

// Schema validation metric names.
const (
	MetricSparkClusterValidationCount = "spark_cluster_validation_count"

	MetricSparkClusterValidationDurationSeconds = "spark_cluster_validation_duration_seconds"

	MetricSparkClusterSchemaLoadCount = "spark_cluster_schema_load_count"
)

// Metric label names and values.
const (
	MetricLabelResult = "result"

	MetricResultSuccess = "success"

	MetricResultFailure = "failure"
)

// DefaultMetricsPrefix is the prefix prepended to every metric name.
const DefaultMetricsPrefix = ""

// DefaultValidationDurationBuckets are the histogram buckets, in seconds, of
// the validation duration metric.
var DefaultValidationDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}
