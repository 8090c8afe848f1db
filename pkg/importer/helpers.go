package importer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"gopkg.in/yaml.v3"
)

// maxDownloadSize bounds a single lexicon download.
const maxDownloadSize = 256 << 20

const downloadAttempts = 3

var httpClient = &http.Client{Timeout: 10 * time.Minute}

// downloadFile fetches url into dest, retrying transient failures with
// exponential backoff. 4xx responses other than 429 are not retried.
func downloadFile(ctx context.Context, url, dest string) error {
	var lastErr error
	for attempt := 0; attempt < downloadAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		retry, err := fetchOnce(ctx, url, dest)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return fmt.Errorf("download %s: %w", url, lastErr)
}

func fetchOnce(ctx context.Context, url, dest string) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "namecanon-importer")

	resp, err := httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return transient, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("create file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		return true, copyErr
	case n > maxDownloadSize:
		return false, fmt.Errorf("response exceeds %d bytes", maxDownloadSize)
	case closeErr != nil:
		return false, closeErr
	}
	return false, nil
}

// unzipFile extracts the regular files of a ZIP archive into destDir, flattening
// directories, and returns their paths.
func unzipFile(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		if err := extract(f, destPath); err != nil {
			return nil, err
		}
		paths = append(paths, destPath)
	}
	return paths, nil
}

func extract(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxDownloadSize)); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// writeManifest writes m as YAML to dir/manifest.yaml.
func writeManifest(dir string, m *lexicon.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "manifest.yaml"), data, 0o644)
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
