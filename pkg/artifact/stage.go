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

// Package artifact stages, packages and stores preview build outputs
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// vcsControlFiles are dropped during staging so published artifacts carry
// no repository control files (the deployer serves the directory as-is)
var vcsControlFiles = map[string]bool{
	".gitignore":     true,
	".gitattributes": true,
	".git":           true,
}

// StageResult summarizes a staging operation
type StageResult struct {
	Files   int
	Skipped int
	Bytes   int64
}

// Stage copies the built web assets from srcDir into destDir, dropping
// VCS control files. destDir is created if needed; existing contents are
// replaced.
func Stage(srcDir, destDir string) (*StageResult, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, fmt.Errorf("build output %s not found: %w", srcDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build output %s is not a directory", srcDir)
	}

	if err := os.RemoveAll(destDir); err != nil {
		return nil, fmt.Errorf("failed to clear staging directory %s: %w", destDir, err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory %s: %w", destDir, err)
	}

	result := &StageResult{}
	err = filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if vcsControlFiles[d.Name()] {
			result.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(destDir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		n, err := copyFile(path, target)
		if err != nil {
			return err
		}
		result.Files++
		result.Bytes += n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", srcDir, err)
	}

	return result, nil
}

// copyFile copies a single file preserving its mode
func copyFile(src, dest string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}
