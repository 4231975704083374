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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

func init() {
	SchemeBuilder.Register(&SparkCluster{}, &SparkClusterList{})
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Namespaced,shortName=sc,singular=sparkcluster
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:JSONPath=.spec.workerNodes,name=Workers,type=integer
// +kubebuilder:printcolumn:JSONPath=.spec.masterNodes,name=Masters,type=integer
// +kubebuilder:printcolumn:JSONPath=.status.state,name="Status",type=string
// +kubebuilder:printcolumn:JSONPath=.metadata.creationTimestamp,name=Age,type=date

// SparkCluster is the Schema for the sparkclusters API.
type SparkCluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   SparkClusterSpec   `json:"spec"`
	Status SparkClusterStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// SparkClusterList contains a list of SparkCluster.
type SparkClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []SparkCluster `json:"items"`
}

// SparkClusterSpec is a Spark cluster configuration. Its shape is declared by
// the embedded sparkcluster schema; values are filled in by validating a
// document against it.
type SparkClusterSpec struct {
	// Name is the name of the cluster. It defaults to the name of the object
	// the configuration was read from.
	// +optional
	Name string `json:"name,omitempty"`

	// WorkerNodes is the number of Spark workers.
	// +kubebuilder:default=1
	// +optional
	WorkerNodes *int32 `json:"workerNodes,omitempty"`

	// MasterNodes is the number of Spark masters.
	// +kubebuilder:default=1
	// +optional
	MasterNodes *int32 `json:"masterNodes,omitempty"`

	// CustomImage is the container image used for masters and workers.
	// +optional
	CustomImage string `json:"customImage,omitempty"`

	// Memory is the memory limit of each Spark pod, e.g. "1Gi".
	// +optional
	Memory string `json:"memory,omitempty"`

	// CPU is the CPU limit of each Spark pod, e.g. "500m".
	// +optional
	CPU string `json:"cpu,omitempty"`

	// SparkConfigurationMap names a ConfigMap holding Spark configuration files.
	// +optional
	SparkConfigurationMap string `json:"sparkConfigurationMap,omitempty"`

	// Env is a list of environment variables set on the Spark pods.
	// +optional
	Env []NameValue `json:"env,omitempty"`

	// SparkConfiguration is a list of Spark properties. It has the same shape as Env.
	// +optional
	SparkConfiguration []NameValue `json:"sparkConfiguration,omitempty"`

	// DownloadData lists files to download into the Spark pods before start.
	// +optional
	DownloadData []DownloadDataItem `json:"downloadData,omitempty"`
}

// NameValue is a name/value pair. Both fields are required; they are pointers
// so that a missing field is told apart from an empty one.
type NameValue struct {
	Name  *string `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

// DownloadDataItem describes one file to fetch.
type DownloadDataItem struct {
	// URL is the location of the file.
	URL *string `json:"url,omitempty"`
	// To is the destination path inside the pod.
	To *string `json:"to,omitempty"`
}

// SparkClusterState is the observed state of a SparkCluster.
type SparkClusterState string

// Different states a SparkCluster may have.
const (
	SparkClusterStateInitial SparkClusterState = "initial"
	SparkClusterStateReady   SparkClusterState = "ready"
	SparkClusterStateInvalid SparkClusterState = "invalid"
)

// SparkClusterStatus defines the observed state of SparkCluster.
type SparkClusterStatus struct {
	// +optional
	State SparkClusterState `json:"state,omitempty"`
	// +optional
	LastTransitionTime metav1.Time `json:"lastTransitionTime,omitempty"`
}

var _ schema.EntityInfo = &SparkClusterSpec{}

// GetName implements schema.EntityInfo.
func (s *SparkClusterSpec) GetName() string {
	return s.Name
}
