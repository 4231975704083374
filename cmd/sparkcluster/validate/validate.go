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

package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
	"sigs.k8s.io/yaml"

	v1 "github.com/kubeflow/spark-cluster-schema/api/v1"
	"github.com/kubeflow/spark-cluster-schema/internal/metrics"
	"github.com/kubeflow/spark-cluster-schema/internal/schemawatch"
	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
	"github.com/kubeflow/spark-cluster-schema/pkg/common"
	"github.com/kubeflow/spark-cluster-schema/pkg/features"
	"github.com/kubeflow/spark-cluster-schema/pkg/util"
)

var (
	logger = ctrl.Log.WithName("validate")
)

// Output formats.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
	OutputNone = "none"
)

var (
	schemaFile                string
	output                    string
	watch                     bool
	metricsBindAddress        string
	metricsEndpoint           string
	metricsPrefix             string
	validationDurationBuckets = util.HistogramBuckets(common.DefaultValidationDurationBuckets)
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "validate [FILE...]",
		Short: "Validate Spark cluster documents and print them with defaults applied",
		Long: `Validate Spark cluster documents and print them with defaults applied.
A file may hold several documents separated by "---". Each document is a bare cluster configuration,
a ConfigMap holding one under its "config" key, or a SparkCluster custom resource. Reads stdin when no
file is given.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			schemaFile = viper.GetString("schema")
			output = viper.GetString("output")
			watch = viper.GetBool("watch")
			metricsBindAddress = viper.GetString("metrics-bind-address")
			metricsEndpoint = viper.GetString("metrics-endpoint")
			metricsPrefix = viper.GetString("metrics-prefix")
			return checkFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctrl.SetupSignalHandler, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	command.Flags().StringVar(&schemaFile, "schema", "", "Path of the schema document. Uses the built-in SparkCluster schema if unset.")
	command.Flags().StringVarP(&output, "output", "o", OutputYAML, "Output format of the defaulted clusters, one of yaml, json or none.")
	command.Flags().BoolVar(&watch, "watch", false, "Keep running and validate again whenever the schema file changes. Requires the SchemaHotReload feature gate.")
	command.Flags().StringVar(&metricsBindAddress, "metrics-bind-address", common.DefaultMetricsBindAddress, "The address the metric endpoint binds to in watch mode. "+
		"If not set, it will be 0 in order to disable the metrics server")
	command.Flags().StringVar(&metricsEndpoint, "metrics-endpoint", "/metrics", "Metrics endpoint.")
	command.Flags().StringVar(&metricsPrefix, "metrics-prefix", common.DefaultMetricsPrefix, "Prefix for the metrics.")
	command.Flags().Var(&validationDurationBuckets, "metrics-validation-duration-buckets", "Buckets for the validation duration histogram.")

	return command
}

func checkFlags() error {
	switch output {
	case OutputYAML, OutputJSON, OutputNone:
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
	if !watch {
		return nil
	}
	if !features.Enabled(features.SchemaHotReload) {
		return fmt.Errorf("--watch requires the %s feature gate", features.SchemaHotReload)
	}
	if schemaFile == "" {
		return fmt.Errorf("--watch requires --schema")
	}
	return nil
}

// source is one input file.
type source struct {
	name string
	data []byte
}

func run(signalContext func() context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	m := metrics.NewSparkClusterMetrics(metricsPrefix, validationDurationBuckets)
	m.Register()

	parser, err := sparkcluster.NewParserFromFile(schemaFile, m)
	if err != nil {
		return err
	}

	sources, err := readSources(stdin, args)
	if err != nil {
		return err
	}

	if !watch {
		return validateAll(parser, sources, stdout, stderr)
	}

	ctx := signalContext()
	if err := validateAll(parser, sources, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
	}
	if metricsBindAddress != "" && metricsBindAddress != common.DefaultMetricsBindAddress {
		go serveMetrics(ctx)
	}
	watcher := schemawatch.NewWatcher(schemaFile, parser).OnReload(func(err error) {
		if err != nil {
			fmt.Fprintf(stderr, "schema %s was not reloaded: %v\n", schemaFile, err)
			return
		}
		if err := validateAll(parser, sources, stdout, stderr); err != nil {
			fmt.Fprintln(stderr, err)
		}
	})
	return watcher.Start(ctx)
}

func readSources(stdin io.Reader, args []string) ([]source, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		return []source{{name: "stdin", data: data}}, nil
	}

	sources := make([]source, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		sources = append(sources, source{name: path, data: data})
	}
	return sources, nil
}

// validateAll validates every document of every source. Defaulted clusters
// are written to stdout and failures to stderr.
func validateAll(parser *sparkcluster.Parser, sources []source, stdout, stderr io.Writer) error {
	var total, failed int
	first := true
	for _, src := range sources {
		docs, err := util.SplitYAMLDocuments(src.data)
		if err != nil {
			total++
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", src.name, err)
			continue
		}
		for i, doc := range docs {
			total++
			cluster, err := parseDocument(parser, doc, defaultName(src.name))
			if err != nil {
				failed++
				fmt.Fprintf(stderr, "%s: document %d: %v\n", src.name, i+1, err)
				continue
			}
			if err := printCluster(stdout, cluster, first); err != nil {
				return err
			}
			first = false
		}
	}
	logger.V(1).Info("Validated documents", "total", total, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents are invalid", failed, total)
	}
	return nil
}

func parseDocument(parser *sparkcluster.Parser, doc []byte, name string) (*v1.SparkCluster, error) {
	gvk, err := util.GroupVersionKindOf(doc)
	if err != nil {
		return nil, err
	}

	switch {
	case gvk.Empty():
		return parser.ParseYAML(doc, name)
	case gvk.Group == "" && gvk.Kind == "ConfigMap":
		cm := &corev1.ConfigMap{}
		if err := yaml.Unmarshal(doc, cm); err != nil {
			return nil, errors.Wrap(err, "failed to decode ConfigMap")
		}
		if !util.IsSparkClusterConfigMap(cm) {
			logger.Info("ConfigMap is not labelled as a Spark cluster", "name", cm.Name, "label", common.LabelKind)
		}
		return parser.ParseConfigMap(cm)
	case gvk.GroupKind() == v1.GroupVersion.WithKind("SparkCluster").GroupKind():
		obj := &unstructured.Unstructured{}
		if err := yaml.Unmarshal(doc, &obj.Object); err != nil {
			return nil, errors.Wrap(err, "failed to decode SparkCluster")
		}
		return parser.ParseUnstructured(obj)
	}
	return nil, fmt.Errorf("unsupported kind %s", gvk)
}

// defaultName names clusters read from bare documents after their file.
func defaultName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printCluster(w io.Writer, cluster *v1.SparkCluster, first bool) error {
	switch output {
	case OutputJSON:
		data, err := json.MarshalIndent(cluster, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case OutputYAML:
		data, err := yaml.Marshal(cluster)
		if err != nil {
			return err
		}
		if !first {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		_, err = w.Write(data)
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              metricsBindAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "address", metricsBindAddress, "endpoint", metricsEndpoint)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err, "Metrics server failed")
	}
}
