package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/generation"
)

// MockImageGenerator implements generation.ImageGenerator for testing.
type MockImageGenerator struct {
	// GenerateImageFn overrides the default response.
	GenerateImageFn func(ctx context.Context, req generation.ImageRequest) (string, error)

	// Default response values
	Image string
	Err   error

	mu       sync.Mutex
	requests []generation.ImageRequest
}

var _ generation.ImageGenerator = (*MockImageGenerator)(nil)

// GenerateImage records req and returns the configured response.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, req)
	}
	return m.Image, m.Err
}

// Requests returns every request received so far.
func (m *MockImageGenerator) Requests() []generation.ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.ImageRequest(nil), m.requests...)
}

// Calls returns how many times GenerateImage was called.
func (m *MockImageGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockPairingGenerator implements generation.PairingGenerator for testing.
type MockPairingGenerator struct {
	GeneratePairingsFn func(ctx context.Context, description string) ([]domain.PairingSuggestion, error)

	Wines []domain.PairingSuggestion
	Err   error

	mu           sync.Mutex
	descriptions []string
}

var _ generation.PairingGenerator = (*MockPairingGenerator)(nil)

// GeneratePairings records description and returns the configured response.
func (m *MockPairingGenerator) GeneratePairings(ctx context.Context, description string) ([]domain.PairingSuggestion, error) {
	m.mu.Lock()
	m.descriptions = append(m.descriptions, description)
	m.mu.Unlock()

	if m.GeneratePairingsFn != nil {
		return m.GeneratePairingsFn(ctx, description)
	}
	return m.Wines, m.Err
}

// Descriptions returns every dish description received so far.
func (m *MockPairingGenerator) Descriptions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.descriptions...)
}
