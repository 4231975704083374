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

package v1

import (
	"k8s.io/apimachinery/pkg/runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var logger = logf.Log.WithName("sparkcluster-defaults")

func init() {
	SchemeBuilder.SchemeBuilder.Register(addDefaultingFuncs)
}

func addDefaultingFuncs(scheme *runtime.Scheme) error {
	return RegisterDefaults(scheme)
}

// RegisterDefaults adds defaulting functions to the given scheme.
func RegisterDefaults(scheme *runtime.Scheme) error {
	scheme.AddTypeDefaultingFunc(&SparkCluster{}, func(obj interface{}) {
		if err := SetSparkClusterDefaults(obj.(*SparkCluster)); err != nil {
			logger.Error(err, "Failed to default SparkCluster", "name", obj.(*SparkCluster).Name)
		}
	})
	return nil
}

// SetSparkClusterDefaults fills unset spec fields with the defaults declared
// by the sparkcluster schema. The spec name defaults to the object name.
func SetSparkClusterDefaults(cluster *SparkCluster) error {
	if cluster == nil {
		return nil
	}

	d, err := SparkClusterDescriptor()
	if err != nil {
		return err
	}
	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&cluster.Spec)
	if err != nil {
		return err
	}
	inst, err := d.Validate(obj)
	if err != nil {
		return err
	}
	if inst.GetName() == "" && cluster.Name != "" {
		inst = inst.WithName(cluster.Name)
	}

	spec, err := SpecFromInstance(inst)
	if err != nil {
		return err
	}
	cluster.Spec = *spec
	return nil
}
