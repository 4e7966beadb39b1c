/*
Copyright 2025 The AlaudaDevops Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/metadata"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/slug"
	"github.com/sirupsen/logrus"
)

// Store is a filesystem artifact store. Each preview lands under
// <root>/<slug>/ with the metadata record next to the assets, which is
// the layout the downstream deployer picks up.
type Store struct {
	logger *logrus.Logger
	root   string
}

// NewStore creates a store rooted at root, creating it if needed
func NewStore(logger *logrus.Logger, root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact store root %s: %w", root, err)
	}
	return &Store{logger: logger, root: root}, nil
}

// Root returns the store root directory
func (s *Store) Root() string {
	return s.root
}

// PreviewDir returns the directory a preview publishes to
func (s *Store) PreviewDir(urlSlug string) string {
	return filepath.Join(s.root, urlSlug)
}

// Save publishes a staged assets directory and its metadata record under
// the record's URL slug. An existing preview for the same slug is
// replaced wholesale; a run never leaves a half-written preview behind.
func (s *Store) Save(assetsDir string, record *metadata.Record) (string, error) {
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save preview with invalid metadata: %w", err)
	}

	dest := s.PreviewDir(record.URLSlug)

	// Stage into a unique dot-prefixed directory so concurrent saves never
	// share a staging path and List/Prune never see an in-flight publish.
	tmp, err := os.MkdirTemp(s.root, ".stage-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory in store: %w", err)
	}

	if _, err := Stage(assetsDir, tmp); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("failed to copy assets into store: %w", err)
	}
	if err := record.Write(filepath.Join(tmp, metadata.DefaultFileName)); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}

	if err := os.RemoveAll(dest); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("failed to replace existing preview %s: %w", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("failed to publish preview %s: %w", dest, err)
	}

	s.logger.Infof("Published preview %s to %s", record.URLSlug, dest)
	return dest, nil
}

// List returns the slugs of stored previews, oldest first. Entries whose
// names are not valid slugs (staging directories, stray files) are skipped
// so Prune never touches an in-flight publish.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact store: %w", err)
	}

	type preview struct {
		name    string
		modTime int64
	}
	var previews []preview
	for _, entry := range entries {
		if !entry.IsDir() || !slug.IsValid(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		previews = append(previews, preview{name: entry.Name(), modTime: info.ModTime().UnixNano()})
	}

	sort.Slice(previews, func(i, j int) bool {
		return previews[i].modTime < previews[j].modTime
	})

	names := make([]string, 0, len(previews))
	for _, p := range previews {
		names = append(names, p.name)
	}
	return names, nil
}

// Prune removes the oldest previews until at most keep remain.
// keep <= 0 disables pruning.
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}

	names, err := s.List()
	if err != nil {
		return err
	}
	if len(names) <= keep {
		return nil
	}

	for _, name := range names[:len(names)-keep] {
		dir := s.PreviewDir(name)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to prune preview %s: %w", name, err)
		}
		s.logger.Infof("Pruned old preview %s", name)
	}
	return nil
}
