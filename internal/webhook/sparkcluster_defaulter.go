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

package webhook

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
)

// +kubebuilder:webhook:admissionReviewVersions=v1,failurePolicy=fail,groups=radanalytics.io,matchPolicy=Exact,mutating=true,name=mutate-sparkcluster.radanalytics.io,path=/mutate-radanalytics-io-v1-sparkcluster,reinvocationPolicy=Never,resources=sparkclusters,sideEffects=None,verbs=create;update,versions=v1,webhookVersions=v1

// SparkClusterDefaulter fills a SparkCluster spec with schema defaults.
type SparkClusterDefaulter struct {
	parser *sparkcluster.Parser
}

// NewSparkClusterDefaulter creates a new SparkClusterDefaulter instance.
func NewSparkClusterDefaulter(parser *sparkcluster.Parser) *SparkClusterDefaulter {
	return &SparkClusterDefaulter{parser: parser}
}

// SparkClusterDefaulter implements admission.CustomDefaulter.
var _ admission.CustomDefaulter = &SparkClusterDefaulter{}

// Default implements admission.CustomDefaulter. Specs that fail validation
// are left untouched for the validator to reject.
func (d *SparkClusterDefaulter) Default(_ context.Context, obj runtime.Object) error {
	cluster, ok := obj.(*v1.SparkCluster)
	if !ok {
		return nil
	}

	logger.Info("Defaulting SparkCluster", "name", cluster.Name, "namespace", cluster.Namespace)
	defaulted, err := d.parser.ParseObject(cluster)
	if err != nil {
		logger.V(1).Info("Skipped defaulting invalid SparkCluster", "name", cluster.Name, "namespace", cluster.Namespace, "error", err.Error())
		return nil
	}
	cluster.Spec = defaulted.Spec
	if cluster.Status.State == "" {
		cluster.Status.State = v1.SparkClusterStateInitial
	}
	return nil
}
