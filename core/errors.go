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


package core

import "errors"

// Lookup failure kinds. Sources and the searcher wrap these with context,
// so callers should test with errors.Is.
var (
	// ErrSourceUnavailable indicates a transport or HTTP failure talking to a source.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrParseFailure indicates an upstream response could not be interpreted.
	ErrParseFailure = errors.New("parse failure")

	// ErrNotFound indicates a source found zero candidates for a word.
	ErrNotFound = errors.New("not found")

	// ErrCorpusUnavailable indicates the corpus index is not built or the archive could not be read.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrEmptyQuery indicates the query was empty after normalization.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// Domain validation errors
var (
	// ErrInvalidResult indicates a LookupResult failed validation.
	ErrInvalidResult = errors.New("invalid lookup result")

	// ErrEmptyHeadword indicates the Headword field is empty.
	ErrEmptyHeadword = errors.New("headword cannot be empty")

	// ErrEmptySource indicates the Source field is empty.
	ErrEmptySource = errors.New("source cannot be empty")
)
