package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// writeArchive writes lines to dir/name, compressed according to the extension.
func writeArchive(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := []byte(strings.Join(lines, "\n") + "\n")
	switch filepath.Ext(name) {
	case ".gz":
		zw := gzip.NewWriter(f)
		_, err = zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	case ".zst":
		zw, err := zstd.NewWriter(f)
		require.NoError(t, err)
		_, err = zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	default:
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	return path
}

// sentenceLines formats texts as export lines in language lang, numbering ids from start.
func sentenceLines(start int, lang string, texts ...string) []string {
	lines := make([]string, 0, len(texts))
	for i, text := range texts {
		lines = append(lines, fmt.Sprintf("%d\t%s\t%s", start+i, lang, text))
	}
	return lines
}

// sampleLines is a small mixed-language export.
func sampleLines() []string {
	var lines []string
	lines = append(lines, sentenceLines(1, "jpn", "猫が好きです。", "犬が好きです。")...)
	lines = append(lines, sentenceLines(3, "eng", "I like cats. 猫")...)
	lines = append(lines, "broken line without tabs")
	lines = append(lines, sentenceLines(4, "jpn", "黒い猫を見た。", "猫舌なので熱いのは苦手だ。", "鳥が飛ぶ。")...)
	return lines
}
