package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for testing. It allows configuring queued
// responses, simulating errors, and tracking prompts for verification.
type MockClient struct {
	mu sync.Mutex

	responses []string
	err       error
	available bool

	// Prompts records every prompt passed to Generate, in order.
	Prompts []string
}

// NewMockClient creates a MockClient that is available and returns empty
// responses until configured.
func NewMockClient() *MockClient {
	return &MockClient{available: true}
}

// WithResponse queues one or more responses. Each Generate call consumes
// one; the last response repeats once the queue is exhausted.
func (m *MockClient) WithResponse(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
	return m
}

// WithError makes every Generate call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithAvailable sets the value returned by Available.
func (m *MockClient) WithAvailable(available bool) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
	return m
}

// Generate records the prompt and returns the next queued response or the
// configured error.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// Available returns the configured availability.
func (m *MockClient) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}
