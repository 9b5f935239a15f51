// Package download saves thumbnail images to disk.
// Output paths are validated against directory traversal and files are
// written atomically (temp file, then rename) so a failed transfer never
// leaves a truncated image behind.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"vidmeta/internal/httputil"
)

// MaxThumbnailBytes bounds a single image download.
const MaxThumbnailBytes = 20 * 1024 * 1024

// Thumbnail fetches the image at imageURL into dir as name plus the URL's
// extension. It returns the path written.
func Thumbnail(ctx context.Context, client *http.Client, imageURL, dir, name string) (string, error) {
	if client == nil {
		client = httputil.NewClient(0)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := httputil.SanitizeFilename(name) + httputil.URLExtension(imageURL, ".jpg")
	outputPath, err := httputil.SafeDownloadPath(absDir, filename)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	header := http.Header{}
	header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	resp, err := httputil.Get(ctx, client, imageURL, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail request returned HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("unexpected content type %q", ct)
	}

	tmpFile, err := os.CreateTemp(absDir, "thumbnail-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, MaxThumbnailBytes+1))
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing thumbnail: %w", err)
	}
	if n > MaxThumbnailBytes {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("thumbnail exceeds %d bytes", MaxThumbnailBytes)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming thumbnail: %w", err)
	}

	return outputPath, nil
}
