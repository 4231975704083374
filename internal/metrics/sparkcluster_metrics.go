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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/kubeflow/spark-cluster-schema/pkg/common"
	"github.com/kubeflow/spark-cluster-schema/pkg/util"
)

type SparkClusterMetrics struct {
	prefix          string
	durationBuckets []float64

	validationCount           *prometheus.CounterVec
	validationDurationSeconds *prometheus.HistogramVec
	schemaLoadCount           *prometheus.CounterVec
}

func NewSparkClusterMetrics(prefix string, durationBuckets []float64) *SparkClusterMetrics {
	if len(durationBuckets) == 0 {
		durationBuckets = common.DefaultValidationDurationBuckets
	}
	labels := []string{common.MetricLabelResult}

	return &SparkClusterMetrics{
		prefix:          prefix,
		durationBuckets: durationBuckets,

		validationCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricSparkClusterValidationCount),
				Help: "Total number of validated SparkCluster documents",
			},
			labels,
		),
		validationDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricNameLabel(prefix, common.MetricSparkClusterValidationDurationSeconds),
				Help:    "SparkCluster document validation duration in seconds",
				Buckets: durationBuckets,
			},
			labels,
		),
		schemaLoadCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricSparkClusterSchemaLoadCount),
				Help: "Total number of SparkCluster schema loads",
			},
			labels,
		),
	}
}

// Register registers the metrics with the controller-runtime registry.
func (m *SparkClusterMetrics) Register() {
	m.RegisterTo(metrics.Registry)
}

// RegisterTo registers the metrics with r.
func (m *SparkClusterMetrics) RegisterTo(r prometheus.Registerer) {
	if err := r.Register(m.validationCount); err != nil {
		logger.Error(err, "Failed to register spark cluster metric", "name", common.MetricSparkClusterValidationCount)
	}
	if err := r.Register(m.validationDurationSeconds); err != nil {
		logger.Error(err, "Failed to register spark cluster metric", "name", common.MetricSparkClusterValidationDurationSeconds)
	}
	if err := r.Register(m.schemaLoadCount); err != nil {
		logger.Error(err, "Failed to register spark cluster metric", "name", common.MetricSparkClusterSchemaLoadCount)
	}
}

// HandleValidation records the outcome and duration of one document validation.
func (m *SparkClusterMetrics) HandleValidation(err error, duration time.Duration) {
	if m == nil {
		return
	}
	labels := resultLabels(err)

	counter, cerr := m.validationCount.GetMetricWith(labels)
	if cerr != nil {
		logger.Error(cerr, "Failed to collect metric for SparkCluster validation", "metric", common.MetricSparkClusterValidationCount, "labels", labels)
		return
	}
	counter.Inc()

	observer, oerr := m.validationDurationSeconds.GetMetricWith(labels)
	if oerr != nil {
		logger.Error(oerr, "Failed to collect metric for SparkCluster validation", "metric", common.MetricSparkClusterValidationDurationSeconds, "labels", labels)
		return
	}
	observer.Observe(duration.Seconds())
	logger.V(1).Info("Observed spark cluster validation", "metric", common.MetricSparkClusterValidationDurationSeconds, "labels", labels, "value", duration.Seconds())
}

// HandleSchemaLoad records the outcome of one schema load.
func (m *SparkClusterMetrics) HandleSchemaLoad(err error) {
	if m == nil {
		return
	}
	labels := resultLabels(err)
	counter, cerr := m.schemaLoadCount.GetMetricWith(labels)
	if cerr != nil {
		logger.Error(cerr, "Failed to collect metric for SparkCluster schema load", "metric", common.MetricSparkClusterSchemaLoadCount, "labels", labels)
		return
	}
	counter.Inc()
	logger.V(1).Info("Increased spark cluster schema load count", "metric", common.MetricSparkClusterSchemaLoadCount, "labels", labels)
}

func resultLabels(err error) prometheus.Labels {
	result := common.MetricResultSuccess
	if err != nil {
		result = common.MetricResultFailure
	}
	return prometheus.Labels{common.MetricLabelResult: result}
}
