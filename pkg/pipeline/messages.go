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

package pipeline

import (
	"fmt"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/metadata"
)

// Preview Messages
const (
	previewReadyTemplate = `🚀 **Preview Ready**

A preview build for this pull request is available.

| | |
|---|---|
| **PR** | #%s |
| **Slug** | ` + "`%s`" + ` |

Preview: %s`

	previewReadyNoURLTemplate = `🚀 **Preview Ready**

A preview build for this pull request is available.

| | |
|---|---|
| **PR** | #%s |
| **Slug** | ` + "`%s`" + ` |`
)

// previewReadyMessage formats the comment posted when a preview build
// finishes successfully
func previewReadyMessage(record *metadata.Record, previewURL string) string {
	if previewURL == "" {
		return fmt.Sprintf(previewReadyNoURLTemplate, record.PRNumber, record.URLSlug)
	}
	return fmt.Sprintf(previewReadyTemplate, record.PRNumber, record.URLSlug, previewURL)
}
