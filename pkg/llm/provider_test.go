package llm

import (
	"context"
	"fmt"
	"testing"
)

// mockProvider 模拟供应商实现，用于测试。
type mockProvider struct {
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockProvider) Chat(_ context.Context, _ []Message) (string, error) {
	return "mock response", nil
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ string) (string, error) {
	return "mock generated text", nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test-provider", func(config map[string]any) (Provider, error) {
		name := "test-provider"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &mockProvider{name: name}, nil
	})

	provider, err := NewProvider("test-provider", map[string]any{"name": "custom-name"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if provider.Name() != "custom-name" {
		t.Errorf("expected name 'custom-name', got '%s'", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("unknown-provider", nil)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmbeddingProvider(t *testing.T) {
	RegisterProvider("embed-via-full", func(config map[string]any) (Provider, error) {
		return &mockProvider{name: "embed-via-full"}, nil
	})

	provider, err := NewEmbeddingProvider("embed-via-full", nil)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider failed: %v", err)
	}

	if provider.Name() != "embed-via-full" {
		t.Errorf("expected name 'embed-via-full', got '%s'", provider.Name())
	}
}

func TestIsQuota(t *testing.T) {
	qe := &QuotaError{Provider: "gemini", Detail: "RESOURCE_EXHAUSTED"}

	if !IsQuota(qe) {
		t.Error("expected IsQuota true for QuotaError")
	}

	wrapped := fmt.Errorf("embed batch 2: %w", qe)
	if !IsQuota(wrapped) {
		t.Error("expected IsQuota true for wrapped QuotaError")
	}

	if IsQuota(fmt.Errorf("plain failure")) {
		t.Error("expected IsQuota false for plain error")
	}

	if IsQuota(nil) {
		t.Error("expected IsQuota false for nil")
	}
}
