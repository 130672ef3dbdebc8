package keyset

import (
	"context"
	"strings"

	"provelope/internal/domain"
)

// Fetcher retrieves a key set from a remote location. Implementations must
// honor the context deadline; callers treat any error as "no key set
// resolved" unless their policy demands otherwise.
type Fetcher interface {
	FetchKeySet(ctx context.Context, url string) (*domain.KeySet, error)
}

// Resolve picks the key set to use for a verification: an explicitly
// supplied set wins, then a set inlined in the envelope, then a fetch from
// url. Sources never merge. A failed or unreachable fetch yields a nil key
// set along with the fetch error so the raw-signature path can surface it
// distinctly.
func Resolve(ctx context.Context, explicit, inline *domain.KeySet, url string, fetcher Fetcher) (*domain.KeySet, error) {
	if explicit != nil {
		return explicit, nil
	}
	if inline != nil {
		return inline, nil
	}
	if url == "" || fetcher == nil {
		return nil, nil
	}
	ks, err := fetcher.FetchKeySet(ctx, url)
	if err != nil {
		return nil, err
	}
	return ks, nil
}

// Select finds the verification key in a key set. Candidates are limited to
// OKP/Ed25519 records carrying key material. When a kid is requested the
// match is exact (after trimming) and never falls back to a different key;
// otherwise a record tagged use=sig or alg=EdDSA is preferred, then the
// first candidate in set order.
func Select(ks *domain.KeySet, kid string) *domain.KeyRecord {
	if ks == nil {
		return nil
	}
	candidates := make([]*domain.KeyRecord, 0, len(ks.Keys))
	for i := range ks.Keys {
		k := &ks.Keys[i]
		if k.Kty != "OKP" || k.Crv != "Ed25519" || k.X == "" {
			continue
		}
		candidates = append(candidates, k)
	}
	if len(candidates) == 0 {
		return nil
	}

	if want := strings.TrimSpace(kid); want != "" {
		for _, k := range candidates {
			if strings.TrimSpace(k.Kid) == want {
				return k
			}
		}
		return nil
	}

	for _, k := range candidates {
		if k.Use == "sig" || k.Alg == "EdDSA" {
			return k
		}
	}
	return candidates[0]
}
