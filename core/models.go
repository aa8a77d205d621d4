package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier, used for cache keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// LookupResult is one dictionary entry as produced by a source and
// combined by the searcher. Headword is the merge key.
//
// Optional fields are "absent" when empty. The JSON names match the
// wordbook wire format.
type LookupResult struct {
	Headword     string   `json:"ja"`
	Alternates   []string `json:"altn,omitempty"`
	Definitions  []string `json:"jm,omitempty"`
	Reading      string   `json:"fu,omitempty"`
	Translations []string `json:"en,omitempty"`
	Examples     []string `json:"ex,omitempty"`
	Source       string   `json:"src"`
}

// NewLookupResult returns a result with only the required fields set.
func NewLookupResult(headword, source string) LookupResult {
	return LookupResult{Headword: headword, Source: source}
}

// Merge folds other into r.
//
// Alternates are concatenated (r's first). Every other optional field
// keeps r's value unless r's is empty. When the source strings differ,
// other's is appended after a comma; the whole strings are compared,
// so merging "A,B" with "B" yields "A,B,B".
func (r *LookupResult) Merge(other LookupResult) {
	if len(other.Alternates) > 0 {
		r.Alternates = slices.Concat(r.Alternates, other.Alternates)
	}
	if len(r.Definitions) == 0 {
		r.Definitions = other.Definitions
	}
	if r.Reading == "" {
		r.Reading = other.Reading
	}
	if len(r.Translations) == 0 {
		r.Translations = other.Translations
	}
	if len(r.Examples) == 0 {
		r.Examples = other.Examples
	}

	if r.Source != other.Source {
		r.Source = r.Source + "," + other.Source
	}
}

// MatchScore scores the headword against query. See MatchScore.
func (r *LookupResult) MatchScore(query string) int {
	return MatchScore(r.Headword, query)
}

// Clone returns a deep copy, so merging into the copy leaves r untouched.
func (r LookupResult) Clone() LookupResult {
	r.Alternates = slices.Clone(r.Alternates)
	r.Definitions = slices.Clone(r.Definitions)
	r.Translations = slices.Clone(r.Translations)
	r.Examples = slices.Clone(r.Examples)
	return r
}
