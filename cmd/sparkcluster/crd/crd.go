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

package crd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
	"github.com/kubeflow/spark-cluster-schema/pkg/crd"
)

var (
	schemaFile string
	output     string
	names      crd.Names
)

func NewCommand() *cobra.Command {
	names = crd.DefaultNames()
	command := &cobra.Command{
		Use:   "crd",
		Short: "Print the CustomResourceDefinition generated from the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parser, err := sparkcluster.NewParserFromFile(schemaFile, nil)
			if err != nil {
				return err
			}
			desc, err := parser.Registry().Descriptor()
			if err != nil {
				return err
			}
			definition, err := crd.NewCustomResourceDefinition(desc, names)
			if err != nil {
				return err
			}
			return printDefinition(cmd.OutOrStdout(), definition, output)
		},
	}

	command.Flags().StringVar(&schemaFile, "schema", "", "Path of the schema document. Uses the built-in SparkCluster schema if unset.")
	command.Flags().StringVarP(&output, "output", "o", "yaml", "Output format, one of yaml or json.")
	command.Flags().StringVar(&names.Group, "group", names.Group, "API group of the resource.")
	command.Flags().StringVar(&names.Version, "version", names.Version, "API version of the resource.")
	command.Flags().StringVar(&names.Kind, "kind", names.Kind, "Kind of the resource.")
	command.Flags().StringVar(&names.Plural, "plural", names.Plural, "Plural name of the resource. Derived from the kind if empty.")
	command.Flags().StringVar(&names.Singular, "singular", names.Singular, "Singular name of the resource. Derived from the kind if empty.")
	command.Flags().StringVar(&names.ShortName, "short-name", names.ShortName, "Short name of the resource.")
	return command
}

func printDefinition(w io.Writer, definition *apiextensionsv1.CustomResourceDefinition, format string) error {
	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(definition)
	if err != nil {
		return err
	}
	unstructured.RemoveNestedField(obj, "status")
	unstructured.RemoveNestedField(obj, "metadata", "creationTimestamp")

	var data []byte
	switch format {
	case "yaml":
		data, err = yaml.Marshal(obj)
	case "json":
		data, err = json.MarshalIndent(obj, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
