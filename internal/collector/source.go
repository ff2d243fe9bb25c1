/*
Copyright 2025 The traitcalc Authors

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


package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/traitcalc/traitcalc/internal/ingest"
	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/config"
)

// TableSource is the interface for pluggable reference-table origins.
type TableSource interface {
	// Name returns a short description of the source for logs.
	Name() string

	// Collect returns the tables. Failures are *config.ConfigurationError
	// values, possibly wrapped.
	Collect(ctx context.Context) (*config.ReferenceTables, error)
}

// FileSource reads the trait and cost tables from two files.
type FileSource struct {
	TraitsPath string
	CostsPath  string
}

var _ TableSource = (*FileSource)(nil)

func (s *FileSource) Name() string {
	return fmt.Sprintf("files(%s, %s)", s.TraitsPath, s.CostsPath)
}

func (s *FileSource) Collect(ctx context.Context) (*config.ReferenceTables, error) {
	tables, err := config.LoadReferenceTables(s.TraitsPath, s.CostsPath)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Collected reference tables",
		"source", s.Name(),
		"traits", len(tables.Traits),
		"units", len(tables.Costs))
	return tables, nil
}

// PageSource scrapes both tables from one trait markup page.
type PageSource struct {
	Path string
}

var _ TableSource = (*PageSource)(nil)

func (s *PageSource) Name() string {
	return fmt.Sprintf("page(%s)", s.Path)
}

func (s *PageSource) Collect(ctx context.Context) (*config.ReferenceTables, error) {
	tables, err := ingest.ParseFile(s.Path)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Collected reference tables",
		"source", s.Name(),
		"traits", len(tables.Traits),
		"units", len(tables.Costs))
	return tables, nil
}

// IsPage reports whether path names a markup page.
func IsPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// NewTableSource returns a PageSource when traitsPath is a markup page and
// a FileSource otherwise. costsPath is ignored for pages, which carry both
// tables.
func NewTableSource(traitsPath, costsPath string) TableSource {
	if IsPage(traitsPath) {
		return &PageSource{Path: traitsPath}
	}
	return &FileSource{TraitsPath: traitsPath, CostsPath: costsPath}
}
