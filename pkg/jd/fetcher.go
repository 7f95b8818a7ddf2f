// Package jd loads job descriptions from files, standard input or web pages.
package jd

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// StdinInput reads the job description from standard input.
	StdinInput = "-"

	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 2 << 20
	userAgent       = "resume-studio/1.0"
)

// Fetcher retrieves job descriptions.
type Fetcher struct {
	client   *http.Client
	stdin    io.Reader
	maxBytes int64
}

// NewFetcher creates a fetcher with a 30 second HTTP timeout.
func NewFetcher() (f *Fetcher) {
	f = &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		stdin:    os.Stdin,
		maxBytes: defaultMaxBytes,
	}
	return f
}

// Fetch retrieves a job description from file, URL or "-" for stdin.
func Fetch(input string) (content string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	content, err = FetchWithContext(ctx, input)
	return content, err
}

// FetchWithContext retrieves a job description with the default fetcher.
func FetchWithContext(ctx context.Context, input string) (content string, err error) {
	content, err = NewFetcher().Fetch(ctx, input)
	return content, err
}

// Fetch retrieves a job description. Web pages are reduced to their text.
func (f *Fetcher) Fetch(ctx context.Context, input string) (content string, err error) {
	input = strings.TrimSpace(input)

	switch {
	case input == "":
		err = errors.New("no job description source given")
		return content, err
	case input == StdinInput:
		content, err = f.fetchFromReader(f.stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read JD from stdin")
			return content, err
		}
		return content, err
	}

	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = f.fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch JD from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch JD from file: %s", input)
		return content, err
	}

	return content, err
}

// fetchFromFile reads a job description from a file.
func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("file is empty")
		return content, err
	}

	return content, err
}

func (f *Fetcher) fetchFromReader(r io.Reader) (content string, err error) {
	var data []byte
	data, err = io.ReadAll(io.LimitReader(r, f.maxBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read input")
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("input is empty")
		return content, err
	}

	return content, err
}

// fetchFromURL retrieves a page and strips it to text.
func (f *Fetcher) fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", userAgent)

	var resp *http.Response
	resp, err = f.client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	content = string(bodyBytes)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || looksLikeHTML(content) {
		content = StripHTML(content)
	}
	content = strings.TrimSpace(content)

	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

//nolint:gochecknoglobals // Compiled once
var (
	scriptOrStyle = regexp.MustCompile(`(?is)<(script|style|noscript|svg)\b.*?</(script|style|noscript|svg)\s*>`)
	htmlComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBoundary = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/h[1-6]|/tr|/section|/article|/ul|/ol)\b[^>]*>`)
	listItemStart = regexp.MustCompile(`(?i)<\s*li\b[^>]*>`)
	anyTag        = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRun      = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

func looksLikeHTML(s string) (ok bool) {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	ok = strings.Contains(head, "<html") || strings.Contains(head, "<!doctype") || strings.Contains(head, "<body")
	return ok
}

// StripHTML reduces an HTML page to readable text. Scripts, styles and
// comments are dropped, block elements become line breaks, list items become
// "- " lines and entities are decoded.
func StripHTML(page string) (text string) {
	text = scriptOrStyle.ReplaceAllString(page, "")
	text = htmlComment.ReplaceAllString(text, "")
	text = listItemStart.ReplaceAllString(text, "\n- ")
	text = blockBoundary.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return text
}
