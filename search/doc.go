// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search aggregates lookups across dictionary sources.
//
// A Searcher answers a query in four stages:
//   - Dispatch: every dictionary source is asked in turn; a failing
//     source is logged and contributes nothing
//   - Merge: results sharing a headword are folded into one, in order
//     of first appearance
//   - Enrich: each merged entry is sent to the examples source on a
//     bounded worker pool and receives its example sentences
//   - Rank: entries are stably sorted by match score against the query
//
// SearchTop answers with a single entry built from each source's best
// match instead.
package search
