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


// Package source defines the lookup capability every dictionary and
// example provider implements, and the derived single-best lookup.
//
// Adapters live in subpackages:
//
//   - jisho: a remote structured JSON API
//   - goo: a scraped HTML dictionary with a candidate page
//   - tatoeba: the example-sentence corpus
//   - morph: offline morphological analysis
//   - llm: a language model asked for a dictionary entry
//   - cache: a decorator that caches another source's answers
//
// A Lookup returns an empty slice, not an error, when the source simply
// has nothing for the word. Errors are reserved for transport and parse
// failures and wrap the kinds in package core.
package source
