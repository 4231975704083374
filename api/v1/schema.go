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
	_ "embed"
	"math"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

// SparkClusterSchema is the schema document describing SparkClusterSpec.
//
//go:embed sparkcluster.schema.json
var SparkClusterSchema []byte

var (
	descriptorOnce sync.Once
	descriptor     *schema.Descriptor
	descriptorErr  error
)

// SparkClusterDescriptor returns the descriptor loaded from SparkClusterSchema.
func SparkClusterDescriptor() (*schema.Descriptor, error) {
	descriptorOnce.Do(func() {
		descriptor, descriptorErr = schema.Load(SparkClusterSchema)
	})
	return descriptor, descriptorErr
}

// int32Properties are the integer properties decoded into int32 fields.
var int32Properties = []string{"workerNodes", "masterNodes"}

// SpecFromInstance decodes a validated instance into a SparkClusterSpec.
// Integers that do not fit their int32 field are rejected instead of being
// truncated.
func SpecFromInstance(inst *schema.Instance) (*SparkClusterSpec, error) {
	for _, name := range int32Properties {
		n, ok := inst.GetInt64(name)
		if ok && (n < math.MinInt32 || n > math.MaxInt32) {
			return nil, schema.OutOfRange(field.NewPath(name), n)
		}
	}

	spec := &SparkClusterSpec{}
	if err := inst.Into(spec); err != nil {
		return nil, errors.Wrapf(err, "failed to decode spark cluster %q", inst.GetName())
	}
	return spec, nil
}
