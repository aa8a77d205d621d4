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


// Package corpus finds example sentences in a compressed, line-oriented
// sentence export without holding the text in memory.
//
// Each line of the export has the form
//
//	id<TAB>lang<TAB>text
//
// Build makes one pass over the archive and records, for every
// character of every target-language line, which line numbers contain
// it. Characters that occur more than a threshold of times (500 by
// default, counting repeats within a line) become hot and stop
// accumulating; they carry no filtering power.
//
// A search intersects the line sets of the query's cold characters,
// then decompresses the archive again and checks only the surviving
// lines for a literal substring match. A character missing from the
// index proves the word cannot occur, so the scan is skipped entirely.
//
// # Archives
//
// The codec is chosen by file extension: .bz2 (the Tatoeba export
// format), .gz, .zst, or plain text for anything else.
//
// # Thread Safety
//
// The index is built once and never mutated afterward, so a Corpus may
// be searched from any number of goroutines without locking.
package corpus
