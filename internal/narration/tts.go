package narration

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultTTSURL     = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 10 * time.Second
	// Language and speaking rate of the narration voice.
	voiceLang  = "ru"
	voiceSpeed = 0.9
)

// Fetcher downloads speech audio for a text and caches it as MP3 files.
type Fetcher struct {
	baseURL  string
	cacheDir string
	client   *http.Client
}

// NewFetcher creates a fetcher caching into cacheDir. An empty baseURL uses
// Google Translate's speech endpoint.
func NewFetcher(baseURL, cacheDir string) *Fetcher {
	if baseURL == "" {
		baseURL = defaultTTSURL
	}
	return &Fetcher{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Fetch returns the path of an MP3 file speaking text, downloading it on
// first use.
func (f *Fetcher) Fetch(ctx context.Context, text string) (string, error) {
	sum := sha1.Sum([]byte(voiceLang + "|" + text))
	path := filepath.Join(f.cacheDir, hex.EncodeToString(sum[:])+".mp3")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create voice cache: %w", err)
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", voiceLang)
	params.Set("client", "tw-ob")
	params.Set("ttsspeed", strconv.FormatFloat(voiceSpeed, 'f', -1, 64))
	params.Set("textlen", strconv.Itoa(len([]rune(text))))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch speech: unexpected status %d", resp.StatusCode)
	}

	// A partial download must never become a cache entry.
	tmp, err := os.CreateTemp(f.cacheDir, "tts-*.part")
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write audio file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store audio file: %w", err)
	}
	return path, nil
}
