package corpus

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// newLineScanner returns a scanner sized for long sentence lines.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// parseLine splits an export line into its language and text fields.
// ok is false for lines that do not have all three fields.
func parseLine(line string) (lang, text string, ok bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) < 3 {
		return "", "", false
	}
	return fields[1], fields[2], true
}
