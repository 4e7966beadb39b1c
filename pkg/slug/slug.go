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

// Package slug derives URL-safe identifiers from branch names
package slug

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// validPattern matches a fully sanitized slug
var validPattern = regexp.MustCompile(`^[A-Za-z0-9-]*$`)

// Sanitize strips every character outside [A-Za-z0-9-] from s,
// preserving the relative order of the retained characters.
// Branch names like "42-fix/ui bug!" become "42-fixuibug".
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether s contains only slug-safe characters
func IsValid(s string) bool {
	return validPattern.MatchString(s)
}

// ForPR builds the preview path slug for a pull request: the PR number
// and head branch joined with a dash, then sanitized. "fix/ui bug!" on
// PR 42 becomes "42-fixuibug". When nothing of the head ref survives
// sanitization the slug is just the PR number.
func ForPR(prNumber int, headRef string) string {
	if Sanitize(headRef) == "" {
		return strconv.Itoa(prNumber)
	}
	return Sanitize(fmt.Sprintf("%d-%s", prNumber, headRef))
}
