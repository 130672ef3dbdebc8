package keyset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"provelope/internal/domain"
)

const defaultFetchTimeout = 5 * time.Second

// HTTPFetcher retrieves JWKS-style key sets over HTTP. The timeout bounds a
// single fetch on top of whatever deadline the caller's context carries.
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client, Timeout: defaultFetchTimeout}
}

func (f *HTTPFetcher) FetchKeySet(ctx context.Context, url string) (*domain.KeySet, error) {
	if url == "" {
		return nil, errors.New("key set url is required")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("key set fetch failed")
	}

	var ks domain.KeySet
	if err := json.NewDecoder(resp.Body).Decode(&ks); err != nil {
		return nil, err
	}
	if len(ks.Keys) == 0 {
		return nil, errors.New("key set contains no keys")
	}
	return &ks, nil
}
