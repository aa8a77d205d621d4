package corpus

import (
	"context"
	"io"
)

// DefaultHotThreshold is the occurrence count above which a character
// turns hot.
const DefaultHotThreshold = 500

// IndexState is a character's entry in the index: either hot, or cold
// with the ascending line numbers of the lines it occurs on.
//
// Every occurrence counts toward the hot threshold, so a character
// repeated within a line counts once per repetition while its line is
// listed once.
type IndexState struct {
	hot         bool
	occurrences int
	lines       []int
}

// Hot reports whether the character is too common to filter on.
func (s IndexState) Hot() bool {
	return s.hot
}

// Lines returns the candidate lines of a cold character, nil when hot.
// The slice is shared with the index and must not be modified.
func (s IndexState) Lines() []int {
	return s.lines
}

// Index maps characters to the corpus lines that may contain them.
type Index struct {
	chars     map[rune]*IndexState
	threshold int
}

// BuildStats summarizes a build pass.
type BuildStats struct {
	TotalLines    int
	IndexedLines  int
	SkippedLines  int // malformed
	ForeignLines  int // other languages
	DistinctChars int
	HotChars      int
}

// BuildIndex reads the decompressed export once and indexes the lines
// whose language field equals language. Line numbers count every line
// in the export, starting at 0, so they line up with a later rescan.
func BuildIndex(ctx context.Context, r io.Reader, language string, threshold int) (*Index, BuildStats, error) {
	if threshold <= 0 {
		threshold = DefaultHotThreshold
	}
	idx := &Index{
		chars:     make(map[rune]*IndexState),
		threshold: threshold,
	}

	var stats BuildStats
	scanner := newLineScanner(r)
	for lineNo := 0; scanner.Scan(); lineNo++ {
		if lineNo%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		stats.TotalLines++

		lang, text, ok := parseLine(scanner.Text())
		if !ok {
			stats.SkippedLines++
			continue
		}
		if lang != language {
			stats.ForeignLines++
			continue
		}
		stats.IndexedLines++
		idx.addLine(lineNo, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}

	stats.DistinctChars = len(idx.chars)
	for _, s := range idx.chars {
		if s.hot {
			stats.HotChars++
		}
	}
	return idx, stats, nil
}

func (idx *Index) addLine(lineNo int, text string) {
	for _, c := range text {
		s, ok := idx.chars[c]
		if !ok {
			s = &IndexState{}
			idx.chars[c] = s
		}
		if s.hot {
			continue
		}
		s.occurrences++
		if s.occurrences > idx.threshold {
			s.hot = true
			s.lines = nil
			continue
		}
		if n := len(s.lines); n == 0 || s.lines[n-1] != lineNo {
			s.lines = append(s.lines, lineNo)
		}
	}
}

// State returns the index entry for c.
func (idx *Index) State(c rune) (IndexState, bool) {
	s, ok := idx.chars[c]
	if !ok {
		return IndexState{}, false
	}
	return *s, true
}

// CandidateLines returns the ascending line numbers that may contain word.
//
// restricted is false when no character of word could narrow the scan
// (word is empty or every character is hot); the caller must then scan
// every line. A restricted, empty result means word cannot occur.
func (idx *Index) CandidateLines(word string) (lines []int, restricted bool) {
	for _, c := range word {
		s, ok := idx.chars[c]
		if !ok {
			return []int{}, true
		}
		if s.hot {
			continue
		}
		if !restricted {
			lines = append([]int(nil), s.lines...)
			restricted = true
			continue
		}
		lines = intersect(lines, s.lines)
	}
	return lines, restricted
}

// intersect keeps the members of a that also occur in b. Both must be ascending.
func intersect(a, b []int) []int {
	out := a[:0]
	j := 0
	for _, v := range a {
		for j < len(b) && b[j] < v {
			j++
		}
		if j == len(b) {
			break
		}
		if b[j] == v {
			out = append(out, v)
		}
	}
	return out
}
