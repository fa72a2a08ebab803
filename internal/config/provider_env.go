package config

import (
	"context"
	"os"
)

// EnvVarProvider implements SecretProvider by resolving values directly from
// OS environment variables. This is the provider for local development, where
// secrets come from the shell or a .env file instead of AWS SSM.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetParametersBatch looks each key up with os.LookupEnv. Missing keys are
// silently omitted from the result; the loader reports them as unresolved.
//
// The context is accepted for interface compatibility only; environment
// lookups are synchronous and non-cancellable.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
