package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
)

const (
	fileNamePrefix    = "ai-image-"
	fileNameExtension = ".png"
	fileNamePromptLen = 20

	// generated images are a few megabytes at most
	maxImageBytes = 64 << 20
)

// FileName derives the download name from the first 20 characters of the prompt,
// replacing everything but ASCII letters and digits with '-'
func FileName(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > fileNamePromptLen {
		runes = runes[:fileNamePromptLen]
	}

	var b strings.Builder
	b.WriteString(fileNamePrefix)
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	b.WriteString(fileNameExtension)
	return b.String()
}

// Downloader fetches generated images and saves them locally
type Downloader struct {
	httpClient *http.Client
	dir        string
	notifier   notify.Notifier
	log        *slog.Logger
}

// NewDownloader creates a Downloader writing into dir
func NewDownloader(httpClient *http.Client, dir string, notifier notify.Notifier, log *slog.Logger) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if dir == "" {
		dir = "."
	}
	return &Downloader{
		httpClient: httpClient,
		dir:        dir,
		notifier:   notifier,
		log:        log.With(sl.Module("export.download")),
	}
}

// Fetch returns the image bytes behind url and their content type.
// data: URIs are decoded without a network call.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURI(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Save downloads the image into the download directory and returns the written path.
// Existing files are never overwritten.
func (d *Downloader) Save(ctx context.Context, img domain.Image) (string, error) {
	path, err := d.save(ctx, img)
	if err != nil {
		d.log.With(slog.String("id", img.ID)).Debug("download failed", sl.Err(err))
		d.notifier.Error(notify.MsgDownloadFailed)
		return "", err
	}

	d.log.With(slog.String("id", img.ID), slog.String("path", path)).Info("image downloaded")
	d.notifier.Success(notify.MsgDownloaded)
	return path, nil
}

func (d *Downloader) save(ctx context.Context, img domain.Image) (string, error) {
	data, _, err := d.Fetch(ctx, img.URL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	name := FileName(img.Prompt)
	base := strings.TrimSuffix(name, fileNameExtension)
	for i := 0; ; i++ {
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, fileNameExtension)
		}
		path := filepath.Join(d.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close file: %w", err)
		}
		return path, nil
	}
}

func decodeDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}

	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data URI encoding %q", encoding)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
