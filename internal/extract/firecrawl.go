package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEndpoint  = "https://api.firecrawl.dev/v1/scrape"
	defaultTimeoutMS = 60000
	fragmentJoiner   = "\n\n---\n\n"
)

// blockedDomains lists hosts that refuse automated retrieval; matched as a
// substring, mirroring how clients identify pasted profile links.
var blockedDomains = []string{"linkedin.com"}

// Client calls a Firecrawl-compatible scrape endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	timeoutMS  int
	httpClient *http.Client
}

// NewClient constructs an extraction client. The HTTP timeout tracks the
// service-side timeout so a hung scrape does not outlive the service's own
// deadline.
func NewClient(apiKey, endpoint string, timeoutMS int) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("FIRECRAWL_API_KEY is required")
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultEndpoint
	}
	if timeoutMS <= 0 {
		timeoutMS = defaultTimeoutMS
	}
	return &Client{
		apiKey:    apiKey,
		endpoint:  endpoint,
		timeoutMS: timeoutMS,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
	}, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int      `json:"timeout"`
}

type scrapeFragment struct {
	Markdown string `json:"markdown"`
}

type scrapeResponse struct {
	Data json.RawMessage `json:"data"`
}

// Extract fetches the main content of the page at url as markdown.
func (c *Client) Extract(ctx context.Context, url string) (string, error) {
	if BlockedDomain(url) {
		return "", ErrUnsupportedDomain
	}

	payload, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         c.timeoutMS,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("extraction response parse: %w", err)
	}

	content, err := joinFragments(parsed.Data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// BlockedDomain reports whether the URL points at a domain known to refuse
// automated retrieval. No network call is made for these.
func BlockedDomain(url string) bool {
	lowered := strings.ToLower(url)
	for _, domain := range blockedDomains {
		if strings.Contains(lowered, domain) {
			return true
		}
	}
	return false
}

// joinFragments handles both response shapes the service produces: a single
// page object or an ordered list of page fragments.
func joinFragments(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	if trimmed[0] == '[' {
		var fragments []scrapeFragment
		if err := json.Unmarshal(trimmed, &fragments); err != nil {
			return "", fmt.Errorf("extraction response parse: %w", err)
		}
		parts := make([]string, 0, len(fragments))
		for _, f := range fragments {
			if strings.TrimSpace(f.Markdown) != "" {
				parts = append(parts, f.Markdown)
			}
		}
		return strings.Join(parts, fragmentJoiner), nil
	}

	var single scrapeFragment
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("extraction response parse: %w", err)
	}
	return single.Markdown, nil
}

var _ Extractor = (*Client)(nil)
