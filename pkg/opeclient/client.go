// Package opeclient is the client facade for services that answer with
// proof envelopes. It issues the call, unwraps {payload, proof}, runs the
// verification engine, and applies the require-proof policy. The engine
// itself never raises; this facade is the one place an ok=false outcome
// becomes an error.
package opeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"provelope/internal/domain"
	"provelope/internal/infra/keyset"
	"provelope/internal/usecase"
)

const (
	acceptProofHeader       = "X-OPE-Accept-Proof"
	defaultAcceptProofValue = "embed,headers"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// RequireProof rejects responses that carry no proof or whose proof does
	// not verify. On by default.
	RequireProof bool

	// AcceptProofValue is sent on every request unless a call overrides it.
	AcceptProofValue string

	// KeySet, when set, takes precedence over any key set the envelope
	// carries or points at.
	KeySet *domain.KeySet

	// Fetcher retrieves remote key sets. Defaults to a plain HTTP fetcher.
	Fetcher keyset.Fetcher

	// KeySetURL is the fallback key set location for envelopes carrying
	// none, typically taken from the service's discovery document.
	KeySetURL string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.HTTPClient = client }
}

func WithKeySet(ks *domain.KeySet) Option {
	return func(c *Client) { c.KeySet = ks }
}

func WithFetcher(f keyset.Fetcher) Option {
	return func(c *Client) { c.Fetcher = f }
}

func WithoutProofRequirement() Option {
	return func(c *Client) { c.RequireProof = false }
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
		RequireProof:     true,
		AcceptProofValue: defaultAcceptProofValue,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.Fetcher == nil {
		client.Fetcher = keyset.NewHTTPFetcher(client.HTTPClient)
	}
	return client
}

// CallOptions adjust a single request.
type CallOptions struct {
	AcceptProofValue  string
	ExpectedContentID string
}

// Response is an unwrapped service reply. Verification is nil when the
// response carried no proof and proof was not required.
type Response struct {
	Payload      json.RawMessage
	Proof        *domain.ProofEnvelope
	Verification *domain.Verification
}

type wireResponse struct {
	Payload json.RawMessage       `json:"payload"`
	Proof   *domain.ProofEnvelope `json:"proof,omitempty"`
}

// Post sends body as JSON and verifies the proof on the reply.
func (c *Client) Post(ctx context.Context, path string, body any, opts *CallOptions) (*Response, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	accept := c.AcceptProofValue
	if opts != nil && opts.AcceptProofValue != "" {
		accept = opts.AcceptProofValue
	}
	if accept != "" {
		req.Header.Set(acceptProofHeader, accept)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("service returned status %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return c.finish(ctx, wire, opts)
}

func (c *Client) finish(ctx context.Context, wire wireResponse, opts *CallOptions) (*Response, error) {
	out := &Response{Payload: wire.Payload, Proof: wire.Proof}

	if wire.Proof == nil {
		if c.RequireProof {
			return nil, domain.ErrProofRequired
		}
		return out, nil
	}

	expected := ""
	if opts != nil {
		expected = opts.ExpectedContentID
	}
	verification := usecase.VerifyEnvelope(ctx, *wire.Proof, usecase.VerifyOptions{
		ExpectedContentID: expected,
		KeySet:            c.KeySet,
		Fetcher:           c.Fetcher,
		DefaultKeySetURL:  c.KeySetURL,
	})
	out.Verification = &verification

	if c.RequireProof && !verification.OK {
		return nil, fmt.Errorf("%w: %s", domain.ErrProofInvalid, verification.FailureReason)
	}
	return out, nil
}

// Verify runs the verification engine directly over an envelope using the
// client's key material configuration.
func (c *Client) Verify(ctx context.Context, env domain.ProofEnvelope, expectedContentID string) domain.Verification {
	return usecase.VerifyEnvelope(ctx, env, usecase.VerifyOptions{
		ExpectedContentID: expectedContentID,
		KeySet:            c.KeySet,
		Fetcher:           c.Fetcher,
		DefaultKeySetURL:  c.KeySetURL,
	})
}
