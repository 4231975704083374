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
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

// +kubebuilder:webhook:admissionReviewVersions=v1,failurePolicy=fail,groups=radanalytics.io,matchPolicy=Exact,mutating=false,name=validate-sparkcluster.radanalytics.io,path=/validate-radanalytics-io-v1-sparkcluster,reinvocationPolicy=Never,resources=sparkclusters,sideEffects=None,verbs=create;update,versions=v1,webhookVersions=v1

type SparkClusterValidator struct {
	parser *sparkcluster.Parser
}

// NewSparkClusterValidator creates a new SparkClusterValidator instance.
func NewSparkClusterValidator(parser *sparkcluster.Parser) *SparkClusterValidator {
	return &SparkClusterValidator{parser: parser}
}

var _ admission.CustomValidator = &SparkClusterValidator{}

// ValidateCreate implements admission.CustomValidator.
func (v *SparkClusterValidator) ValidateCreate(ctx context.Context, obj runtime.Object) (admission.Warnings, error) {
	cluster, ok := obj.(*v1.SparkCluster)
	if !ok {
		return nil, nil
	}
	logger.Info("Validating SparkCluster create", "name", cluster.Name, "namespace", cluster.Namespace)
	return nil, v.validate(ctx, cluster)
}

// ValidateUpdate implements admission.CustomValidator.
func (v *SparkClusterValidator) ValidateUpdate(ctx context.Context, oldObj runtime.Object, newObj runtime.Object) (admission.Warnings, error) {
	oldCluster, ok := oldObj.(*v1.SparkCluster)
	if !ok {
		return nil, nil
	}
	newCluster, ok := newObj.(*v1.SparkCluster)
	if !ok {
		return nil, nil
	}

	logger.Info("Validating SparkCluster update", "name", newCluster.Name, "namespace", newCluster.Namespace)

	// Skip validating when spec does not change.
	if equality.Semantic.DeepEqual(oldCluster.Spec, newCluster.Spec) {
		return nil, nil
	}
	return nil, v.validate(ctx, newCluster)
}

// ValidateDelete implements admission.CustomValidator.
func (v *SparkClusterValidator) ValidateDelete(_ context.Context, _ runtime.Object) (admission.Warnings, error) {
	return nil, nil
}

func (v *SparkClusterValidator) validate(ctx context.Context, cluster *v1.SparkCluster) error {
	var allErrs field.ErrorList
	if err := validateNameLength(cluster.ObjectMeta); err != nil {
		allErrs = append(allErrs, err)
	}

	if err := v.parse(ctx, cluster); err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fe := verr.FieldError()
		fe.Field = field.NewPath("spec").String() + "." + fe.Field
		allErrs = append(allErrs, fe)
	}

	if len(allErrs) == 0 {
		return nil
	}
	return apierrors.NewInvalid(v1.GroupVersion.WithKind("SparkCluster").GroupKind(), cluster.Name, allErrs)
}

// parse validates the object as submitted when the admission request is
// available, so that fields dropped by typed decoding are still checked.
func (v *SparkClusterValidator) parse(ctx context.Context, cluster *v1.SparkCluster) error {
	req, err := admission.RequestFromContext(ctx)
	if err != nil || len(req.Object.Raw) == 0 {
		_, err := v.parser.ParseObject(cluster)
		return err
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(req.Object.Raw); err != nil {
		return err
	}
	_, err = v.parser.ParseUnstructured(obj)
	return err
}
