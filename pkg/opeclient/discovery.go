package opeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"provelope/internal/domain"
)

// Discover fetches a service's discovery document. Unlike key set fetches
// inside the engine, a discovery failure is a hard error: the facade cannot
// configure itself without one.
func Discover(ctx context.Context, httpClient *http.Client, url string) (domain.DiscoveryDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.DiscoveryDocument{}, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("fetch discovery document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.DiscoveryDocument{}, fmt.Errorf("discovery document fetch returned status %d", resp.StatusCode)
	}
	var doc domain.DiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.DiscoveryDocument{}, fmt.Errorf("decode discovery document: %w", err)
	}
	return doc, nil
}

// UseDiscovery points the client's fallback key set location at whatever the
// discovery document advertises. Errors when the document names no key set.
func (c *Client) UseDiscovery(ctx context.Context, url string) error {
	doc, err := Discover(ctx, c.HTTPClient, url)
	if err != nil {
		return err
	}
	keySetURL := doc.KeySetURL()
	if keySetURL == "" {
		return domain.ErrNoKeySetURL
	}
	c.KeySetURL = keySetURL
	return nil
}
