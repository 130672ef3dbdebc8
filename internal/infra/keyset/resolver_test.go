package keyset

import (
	"context"
	"errors"
	"testing"

	"provelope/internal/domain"
)

type staticFetcher struct {
	keySet *domain.KeySet
	err    error
	calls  int
}

func (f *staticFetcher) FetchKeySet(ctx context.Context, url string) (*domain.KeySet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keySet, nil
}

func keySetWithKid(kid string) *domain.KeySet {
	return &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "OKP", Crv: "Ed25519", X: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", Kid: kid},
	}}
}

func TestResolvePrecedence(t *testing.T) {
	explicit := keySetWithKid("explicit")
	inline := keySetWithKid("inline")
	fetched := &staticFetcher{keySet: keySetWithKid("fetched")}

	ks, err := Resolve(context.Background(), explicit, inline, "https://example.test/jwks", fetched)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ks != explicit {
		t.Fatal("explicit key set did not win")
	}
	if fetched.calls != 0 {
		t.Fatal("fetcher called despite explicit key set")
	}

	ks, err = Resolve(context.Background(), nil, inline, "https://example.test/jwks", fetched)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ks != inline {
		t.Fatal("inline key set did not win over url")
	}
	if fetched.calls != 0 {
		t.Fatal("fetcher called despite inline key set")
	}

	ks, err = Resolve(context.Background(), nil, nil, "https://example.test/jwks", fetched)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ks == nil || ks.Keys[0].Kid != "fetched" {
		t.Fatal("url key set not used when it is the only source")
	}
}

func TestResolveFetchFailureDegradesToNil(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetched := &staticFetcher{err: fetchErr}

	ks, err := Resolve(context.Background(), nil, nil, "https://example.test/jwks", fetched)
	if ks != nil {
		t.Fatal("expected nil key set on fetch failure")
	}
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error to be reported, got %v", err)
	}

	ks, err = Resolve(context.Background(), nil, nil, "", fetched)
	if ks != nil || err != nil {
		t.Fatalf("expected nil/nil with no sources, got %v / %v", ks, err)
	}
}

func TestSelectKidExact(t *testing.T) {
	ks := &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "OKP", Crv: "Ed25519", X: "a2V5LWE", Kid: "a"},
		{Kty: "OKP", Crv: "Ed25519", X: "a2V5LWI", Kid: "b"},
	}}

	got := Select(ks, "a")
	if got == nil || got.Kid != "a" {
		t.Fatalf("expected key a, got %+v", got)
	}
	got = Select(ks, " a ")
	if got == nil || got.Kid != "a" {
		t.Fatalf("expected trimmed kid match, got %+v", got)
	}
	if got := Select(ks, "missing"); got != nil {
		t.Fatalf("expected nil for unknown kid, got %+v", got)
	}
}

func TestSelectFiltersUnusableRecords(t *testing.T) {
	ks := &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "RSA", Kid: "rsa"},
		{Kty: "OKP", Crv: "X25519", X: "eA", Kid: "wrong-curve"},
		{Kty: "OKP", Crv: "Ed25519", Kid: "no-material"},
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "usable"},
	}}
	got := Select(ks, "")
	if got == nil || got.Kid != "usable" {
		t.Fatalf("expected the only usable record, got %+v", got)
	}
	if got := Select(ks, "rsa"); got != nil {
		t.Fatalf("selected an unusable record by kid: %+v", got)
	}
}

func TestSelectNoKidPrefersSigningKeys(t *testing.T) {
	ks := &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "enc", Use: "enc"},
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "sig", Use: "sig"},
	}}
	if got := Select(ks, ""); got == nil || got.Kid != "sig" {
		t.Fatalf("expected use=sig preference, got %+v", got)
	}

	ks = &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "plain"},
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "eddsa", Alg: "EdDSA"},
	}}
	if got := Select(ks, ""); got == nil || got.Kid != "eddsa" {
		t.Fatalf("expected alg=EdDSA preference, got %+v", got)
	}

	ks = &domain.KeySet{Keys: []domain.KeyRecord{
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "first"},
		{Kty: "OKP", Crv: "Ed25519", X: "eA", Kid: "second"},
	}}
	if got := Select(ks, ""); got == nil || got.Kid != "first" {
		t.Fatalf("expected first candidate fallback, got %+v", got)
	}
}

func TestSelectNilKeySet(t *testing.T) {
	if got := Select(nil, "any"); got != nil {
		t.Fatalf("expected nil for nil key set, got %+v", got)
	}
}
