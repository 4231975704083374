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

package schemawatch_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/spark-cluster-schema/internal/schemawatch"
	"github.com/kubeflow/spark-cluster-schema/internal/sparkcluster"
	"github.com/kubeflow/spark-cluster-schema/pkg/schema"
)

const (
	schemaV1 = `
type: object
properties:
  name: {type: string}
  workerNodes: {type: integer, default: 1}
`
	schemaV2 = `
type: object
properties:
  name: {type: string}
  workerNodes: {type: integer, default: 7}
`
)

var _ = Describe("Watcher", func() {
	var (
		dir     string
		path    string
		parser  *sparkcluster.Parser
		results chan error
		cancel  context.CancelFunc
		done    chan struct{}
	)

	workerNodes := func() int32 {
		cluster, err := parser.ParseYAML(nil, "watched")
		Expect(err).NotTo(HaveOccurred())
		Expect(cluster.Spec.WorkerNodes).NotTo(BeNil())
		return *cluster.Spec.WorkerNodes
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "schema.yaml")
		Expect(os.WriteFile(path, []byte(schemaV1), 0o644)).To(Succeed())

		parser = sparkcluster.NewParser(schema.NewRegistry(), nil)
		Expect(parser.LoadSchema([]byte(schemaV1))).To(Succeed())

		results = make(chan error, 16)
		watcher := schemawatch.NewWatcher(path, parser).OnReload(func(err error) {
			results <- err
		})

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			Expect(watcher.Start(ctx)).To(Succeed())
		}()
		// Give the watcher time to register the directory.
		time.Sleep(100 * time.Millisecond)

		DeferCleanup(func() {
			cancel()
			Eventually(done).Should(BeClosed())
		})
	})

	It("Should reload the schema when the file changes", func() {
		Expect(os.WriteFile(path, []byte(schemaV2), 0o644)).To(Succeed())

		Eventually(results, 5*time.Second).Should(Receive(BeNil()))
		Eventually(workerNodes, 5*time.Second).Should(Equal(int32(7)))
	})

	It("Should keep the previous schema when the new one is broken", func() {
		Expect(os.WriteFile(path, []byte("type: object\nproperties: {a: {$ref: '#/nowhere'}}\n"), 0o644)).To(Succeed())

		Eventually(results, 5*time.Second).Should(Receive(MatchError(schema.ErrUnresolvedReference)))
		Expect(workerNodes()).To(Equal(int32(1)))
	})

	It("Should follow a file replaced by rename", func() {
		tmp := filepath.Join(dir, "schema.yaml.tmp")
		Expect(os.WriteFile(tmp, []byte(schemaV2), 0o644)).To(Succeed())
		Expect(os.Rename(tmp, path)).To(Succeed())

		Eventually(workerNodes, 5*time.Second).Should(Equal(int32(7)))
	})

	It("Should ignore other files in the directory", func() {
		Expect(os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("garbage"), 0o644)).To(Succeed())

		Consistently(results, 500*time.Millisecond).ShouldNot(Receive())
		Expect(workerNodes()).To(Equal(int32(1)))
	})
})
