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
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrl "sigs.k8s.io/controller-runtime"
)

var (
	logger = ctrl.Log.WithName("sparkcluster-webhook")
)

// maxClusterNameLength leaves room for the "-m" and "-w" suffixes of the
// master and worker resources derived from a cluster.
const maxClusterNameLength = validation.LabelValueMaxLength - 2

// validateNameLength checks if the cluster name exceeds the limit for Kubernetes labels.
func validateNameLength(meta metav1.ObjectMeta) *field.Error {
	if len(meta.Name) > maxClusterNameLength {
		return field.Invalid(field.NewPath("metadata", "name"), meta.Name,
			fmt.Sprintf("name must be no more than %d characters to allow for resource suffixes", maxClusterNameLength))
	}
	return nil
}
