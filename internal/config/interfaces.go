package config

import "context"

// SecretProvider abstracts secret retrieval so the loader works against both
// AWS SSM Parameter Store (deployed environments) and plain environment
// variables (local development), and so tests can inject a fake.
type SecretProvider interface {
	// GetParametersBatch resolves multiple secret values at once. The keys
	// slice contains SSM parameter paths (or equivalent identifiers); the
	// result maps key -> plaintext for every successfully resolved entry.
	//
	// Implementations should batch and retry with jitter internally to
	// cope with API rate limits during cold starts.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
