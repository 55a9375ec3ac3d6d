package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTestClient(serverURL string) *GeminiClient {
	c := NewGeminiClient("test-key", "gemini-2.5-flash")
	c.endpoint = serverURL
	return c
}

func TestGenerateTextResponse(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Hello "}, {"text": "there"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4}
		}`))
	}))
	defer server.Close()

	client := geminiTestClient(server.URL)
	temp := 0.1
	resp, err := client.Generate(context.Background(), GenerateRequest{
		System:      "be helpful",
		Contents:    []Content{UserText("hi")},
		Temperature: &temp,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there", resp.Text())
	assert.Empty(t, resp.FunctionCalls())
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)

	// Request body carries system instruction and generation config.
	sys := gotBody["systemInstruction"].(map[string]any)
	parts := sys["parts"].([]any)
	assert.Equal(t, "be helpful", parts[0].(map[string]any)["text"])
	genCfg := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, 0.1, genCfg["temperature"])
	assert.Equal(t, float64(1024), genCfg["maxOutputTokens"])
}

func TestGenerateToolDeclarations(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [
					{"functionCall": {"name": "getCustomerData", "args": {"customer_name": "Customer C"}}}
				]}
			}]
		}`))
	}))
	defer server.Close()

	client := geminiTestClient(server.URL)
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Contents: []Content{UserText("prepare a report")},
		Tools: []ToolDeclaration{{
			Name:        "getCustomerData",
			Description: "Retrieves customer negotiation data.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"customer_name":{"type":"string"}},"required":["customer_name"]}`),
		}},
	})
	require.NoError(t, err)

	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "getCustomerData", calls[0].Name)
	assert.Equal(t, "Customer C", calls[0].Args["customer_name"])

	tools := gotBody["tools"].([]any)
	require.Len(t, tools, 1)
	decls := tools[0].(map[string]any)["functionDeclarations"].([]any)
	require.Len(t, decls, 1)
	decl := decls[0].(map[string]any)
	assert.Equal(t, "getCustomerData", decl["name"])
	params := decl["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "permission denied"}}`))
	}))
	defer server.Close()

	client := geminiTestClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Contents: []Content{UserText("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := geminiTestClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Contents: []Content{UserText("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := geminiTestClient(server.URL)
	_, err := client.Generate(ctx, GenerateRequest{Contents: []Content{UserText("hi")}})
	require.Error(t, err)
}

func TestResponseHelpers(t *testing.T) {
	resp := &GenerateResponse{Content: Content{
		Role: RoleModel,
		Parts: []Part{
			TextPart("before "),
			{FunctionCall: &FunctionCall{Name: "first"}},
			{FunctionCall: &FunctionCall{Name: "second"}},
			TextPart("after"),
		},
	}}
	assert.Equal(t, "before after", resp.Text())
	calls := resp.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Name)
	assert.Equal(t, "second", calls[1].Name)
}
