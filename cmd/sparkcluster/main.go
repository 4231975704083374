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

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	utilfeature "k8s.io/apiserver/pkg/util/feature"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	logzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/kubeflow/spark-cluster-schema/cmd/sparkcluster/crd"
	"github.com/kubeflow/spark-cluster-schema/cmd/sparkcluster/validate"
	"github.com/kubeflow/spark-cluster-schema/cmd/sparkcluster/version"
	"github.com/kubeflow/spark-cluster-schema/pkg/common"
)

const featureGatesFlag = "feature-gates"

var (
	development bool
	zapOptions  = logzap.Options{}
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "sparkcluster",
		Short: "Validate and default Spark cluster configurations",
		Long: `sparkcluster validates Spark cluster configurations against the SparkCluster schema.
It fills in schema defaults, prints the resulting clusters and generates the SparkCluster CustomResourceDefinition.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			development = viper.GetBool("development")
			if !cmd.Flags().Changed(featureGatesFlag) && viper.IsSet(featureGatesFlag) {
				if err := utilfeature.DefaultMutableFeatureGate.Set(viper.GetString(featureGatesFlag)); err != nil {
					return fmt.Errorf("invalid %s: %v", featureGatesFlag, err)
				}
			}
			setupLog()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	command.PersistentFlags().Bool("development", false, "Use human readable development logging.")
	utilfeature.DefaultMutableFeatureGate.AddFlag(command.PersistentFlags())

	flagSet := flag.NewFlagSet("sparkcluster", flag.ExitOnError)
	zapOptions.BindFlags(flagSet)
	command.PersistentFlags().AddGoFlagSet(flagSet)

	viper.SetEnvPrefix(common.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("development", command.PersistentFlags().Lookup("development"))
	_ = viper.BindPFlag(featureGatesFlag, command.PersistentFlags().Lookup(featureGatesFlag))

	command.AddCommand(validate.NewCommand())
	command.AddCommand(crd.NewCommand())
	command.AddCommand(version.NewCommand())
	return command
}

// setupLog Configures the logging system
func setupLog() {
	logger := logzap.New(
		logzap.UseFlagOptions(&zapOptions),
		logzap.WriteTo(os.Stderr),
		func(o *logzap.Options) {
			o.Development = development
		}, func(o *logzap.Options) {
			o.ZapOpts = append(o.ZapOpts, zap.AddCaller())
		}, func(o *logzap.Options) {
			var config zapcore.EncoderConfig
			if !development {
				config = zap.NewProductionEncoderConfig()
			} else {
				config = zap.NewDevelopmentEncoderConfig()
				config.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			config.EncodeTime = zapcore.ISO8601TimeEncoder
			config.EncodeCaller = zapcore.ShortCallerEncoder
			if !development {
				o.Encoder = zapcore.NewJSONEncoder(config)
			} else {
				o.Encoder = zapcore.NewConsoleEncoder(config)
			}
		},
	)
	ctrl.SetLogger(logger)
	klog.SetLogger(logger)
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
