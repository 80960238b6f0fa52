// Package feed fetches and decodes the NDW bridge-opening feed: a
// gzip-compressed DATEX II XML document retrieved over HTTP.
package feed

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/types"
)

// Client retrieves the bridge-opening feed
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a feed client for the given URL with a per-request
// timeout in seconds
func NewClient(url string, timeoutSeconds int) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Fetch retrieves, decompresses and decodes the feed. Transport,
// decompression and XML errors are fatal to the run: a partial snapshot
// must never be produced from a half-read feed.
func (c *Client) Fetch(ctx context.Context) ([]types.Situation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating feed request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching feed from %s: %v", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request to %s returned status %d", c.url, resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error decompressing feed: %v", err)
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("error reading feed: %v", err)
	}

	situations, err := parseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed XML: %v", err)
	}

	if len(situations) == 0 {
		log.Info("feed contained no situations")
	} else {
		log.Infof("feed contained %d situations", len(situations))
	}
	return situations, nil
}
