package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultURL is the Tatoeba per-language export of Japanese sentences.
const DefaultURL = "https://downloads.tatoeba.org/exports/per_language/jpn/jpn_sentences.tsv.bz2"

// Ensure downloads the archive at url to path unless path already exists.
// The download goes to a temporary file in the same directory and is
// renamed into place, so an interrupted download never leaves a partial archive.
func Ensure(ctx context.Context, client *http.Client, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return Download(ctx, client, url, path)
}

// Download fetches url into path, replacing any existing file.
func Download(ctx context.Context, client *http.Client, url, path string) error {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	logger := slog.Default().With("component", "corpus")
	logger.Info("downloading corpus", "url", url, "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("corpus: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("corpus: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("corpus: download returned status: %s", resp.Status)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("corpus: write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	logger.Info("corpus downloaded", "path", path, "bytes", n)
	return nil
}
