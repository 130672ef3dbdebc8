package domain

// DiscoveryDocument describes a remote service's published endpoints and
// protocol metadata. Fetched by the client facade, never by the engine.
type DiscoveryDocument struct {
	JWKSURL   string            `json:"jwks_url,omitempty"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
	Policy    map[string]any    `json:"policy,omitempty"`
	Protocol  map[string]any    `json:"protocol,omitempty"`
}

// KeySetURL returns the advertised key set location, preferring the top-level
// jwks_url over the endpoints map fallback. Empty when neither is present.
func (d DiscoveryDocument) KeySetURL() string {
	if d.JWKSURL != "" {
		return d.JWKSURL
	}
	return d.Endpoints["jwks"]
}
