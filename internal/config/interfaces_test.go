package config

import (
	"context"
	"testing"
)

// fakeSecretProvider is a minimal SecretProvider for interface checks.
type fakeSecretProvider struct {
	values map[string]string
}

func (m *fakeSecretProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

// Both shipped providers and a plain mock must satisfy SecretProvider.
func TestSecretProviderImplementations(t *testing.T) {
	var _ SecretProvider = (*EnvVarProvider)(nil)
	var _ SecretProvider = (*SSMProvider)(nil)
	var _ SecretProvider = (*fakeSecretProvider)(nil)
}

func TestFakeSecretProvider_OmitsMissingKeys(t *testing.T) {
	var provider SecretProvider = &fakeSecretProvider{
		values: map[string]string{"/dev/maizecast/database/url": "postgres://localhost/test"},
	}

	result, err := provider.GetParametersBatch(context.Background(),
		[]string{"/dev/maizecast/database/url", "/dev/maizecast/nonexistent"})
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if got := result["/dev/maizecast/database/url"]; got != "postgres://localhost/test" {
		t.Errorf("resolved = %q", got)
	}
	if _, ok := result["/dev/maizecast/nonexistent"]; ok {
		t.Error("missing key should be omitted")
	}
}
