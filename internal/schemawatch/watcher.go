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

package schemawatch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	ctrl "sigs.k8s.io/controller-runtime"
)

var (
	logger = ctrl.Log.WithName("schema-watcher")
)

// configMapDataLink is the symlink swapped by the kubelet when a mounted
// ConfigMap changes.
const configMapDataLink = "..data"

// Loader accepts a new schema document.
type Loader interface {
	LoadSchema(text []byte) error
}

// Watcher reloads a schema file whenever it changes. A document that fails to
// load is reported and the previously loaded schema stays active.
type Watcher struct {
	path     string
	loader   Loader
	onReload func(err error)
	log      logr.Logger
}

// NewWatcher creates a watcher of the schema file at path.
func NewWatcher(path string, loader Loader) *Watcher {
	path = filepath.Clean(path)
	return &Watcher{
		path:   path,
		loader: loader,
		log:    logger.WithValues("path", path),
	}
}

// OnReload sets a function called after every reload attempt.
func (w *Watcher) OnReload(fn func(err error)) *Watcher {
	w.onReload = fn
	return w
}

// Start watches the schema file until ctx is done. The parent directory is
// watched so that files replaced by rename, as editors and the kubelet do,
// keep being followed.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch directory %s", dir)
	}
	w.log.Info("Watching schema file")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.log.V(1).Info("Received fsnotify event", "op", event.Op.String(), "name", event.Name)
			if !w.relevant(event) {
				continue
			}
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "Schema watcher error")
		case <-ctx.Done():
			w.log.Info("Stopped watching schema file")
			return nil
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) == configMapDataLink {
		return event.Has(fsnotify.Create)
	}
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) reload() {
	err := w.load()
	if err != nil {
		w.log.Error(err, "Failed to reload schema, keeping the previous one")
	} else {
		w.log.Info("Reloaded schema")
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

func (w *Watcher) load() error {
	text, err := os.ReadFile(w.path)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", w.path)
	}
	return w.loader.LoadSchema(text)
}
