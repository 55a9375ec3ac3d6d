package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	BackendName  string
	GenerateFunc func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Requests records every GenerateRequest received, in order.
	Requests []GenerateRequest
}

func (m *MockClient) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &GenerateResponse{
		Content: Content{Role: RoleModel, Parts: []Part{TextPart("mock response")}},
	}, nil
}
