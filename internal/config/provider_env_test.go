package config

import (
	"context"
	"testing"
)

func TestEnvVarProvider_ResolvesFromEnvironment(t *testing.T) {
	t.Setenv("MAIZECAST_TEST_SECRET", "plain-value")

	provider := NewEnvVarProvider()
	result, err := provider.GetParametersBatch(context.Background(),
		[]string{"MAIZECAST_TEST_SECRET", "MAIZECAST_TEST_MISSING"})
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}

	if got := result["MAIZECAST_TEST_SECRET"]; got != "plain-value" {
		t.Errorf("resolved value = %q, want plain-value", got)
	}
	if _, ok := result["MAIZECAST_TEST_MISSING"]; ok {
		t.Error("missing keys must be omitted, not returned empty")
	}
}

func TestEnvVarProvider_EmptyKeys(t *testing.T) {
	provider := NewEnvVarProvider()
	result, err := provider.GetParametersBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetParametersBatch failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}

func TestEnvVarProvider_SatisfiesSecretProvider(t *testing.T) {
	var _ SecretProvider = NewEnvVarProvider()
}
