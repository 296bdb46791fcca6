package filtering

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/scriptlets/internal/logging"
)

const (
	fetchTimeoutSeconds  = 60       // HTTP timeout for list downloads
	maxConcurrentFetches = 4        // Maximum concurrent filter list downloads
	maxListSize          = 64 << 20 // Largest filter list accepted
	versionProbeBytes    = 4096     // Bytes requested when probing a list header
	versionHeaderLines   = 20       // The version comment must appear this early
	versionPrefix        = "! Version:"
	fetcherUserAgent     = "scriptlets/1.0 list fetcher"
)

// ErrFetchFailed indicates a filter list could not be downloaded
var ErrFetchFailed = errors.New("fetch failed")

// ListFetcher downloads filter lists over HTTP.
type ListFetcher struct {
	httpClient *http.Client
}

// NewListFetcher creates a fetcher. A nil client gets a default one with a
// timeout.
func NewListFetcher(client *http.Client) *ListFetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeoutSeconds * time.Second}
	}
	return &ListFetcher{httpClient: client}
}

// Fetch downloads the filter list at url.
func (f *ListFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := logging.FromContext(ctx)

	resp, err := f.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetchFailed, url, err)
	}
	if len(data) > maxListSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFetchFailed, url, maxListSize)
	}

	log.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Str("version", ExtractVersion(data)).
		Msg("fetched filter list")
	return data, nil
}

// FetchAll downloads every url concurrently and returns the bodies in url
// order. The first failure cancels the remaining downloads.
func (f *ListFetcher) FetchAll(ctx context.Context, urls []string) ([][]byte, error) {
	bodies := make([][]byte, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, url := range urls {
		g.Go(func() error {
			data, err := f.Fetch(gctx, url)
			if err != nil {
				return err
			}
			bodies[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}

// RemoteVersion reads the "! Version:" header of the list at url without
// downloading all of it.
func (f *ListFetcher) RemoteVersion(ctx context.Context, url string) (string, error) {
	log := logging.FromContext(ctx)

	resp, err := f.get(ctx, url, fmt.Sprintf("bytes=0-%d", versionProbeBytes-1))
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return "", fmt.Errorf("%w: GET %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, versionProbeBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrFetchFailed, url, err)
	}
	version := ExtractVersion(head)
	if version == "" {
		return "", fmt.Errorf("%w: %s has no version header", ErrFetchFailed, url)
	}
	return version, nil
}

func (f *ListFetcher) get(ctx context.Context, url, byteRange string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", fetcherUserAgent)
	if byteRange != "" {
		req.Header.Set("Range", byteRange)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetchFailed, url, err)
	}
	return resp, nil
}

// ExtractVersion returns the value of a "! Version:" comment within the
// first lines of a filter list, or "" when there is none.
func ExtractVersion(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for i := 0; i < versionHeaderLines && scanner.Scan(); i++ {
		if v, ok := parseVersionLine(scanner.Text()); ok {
			return v
		}
	}
	return ""
}

func versionFromLines(lines []string) string {
	for i := 0; i < versionHeaderLines && i < len(lines); i++ {
		if v, ok := parseVersionLine(lines[i]); ok {
			return v
		}
	}
	return ""
}

func parseVersionLine(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), versionPrefix)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
