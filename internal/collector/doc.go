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


// Package collector provides pluggable reference-table collection.
//
// A search consumes two tables, the trait table and the unit cost table.
// They can come from separate table files or be scraped from a saved trait
// markup page; each origin is a TableSource.
//
// # Architecture
//
//	TableSource.Collect → config.ReferenceTables → core.NewIndex → solver
//
// # Supported Sources
//
//   - FileSource: JSON or YAML table files (the usual search input)
//   - PageSource: a trait markup page parsed by internal/ingest
//
// NewTableSource picks the source from the file names it is given.
package collector
