package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// cloudPlatformScope is the OAuth scope required by Vertex AI.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GeminiClient is a direct HTTP client for the Gemini generateContent API.
// It speaks to generativelanguage.googleapis.com with an API key, or to a
// Vertex AI regional endpoint with Application Default Credentials.
type GeminiClient struct {
	name     string
	model    string
	apiKey   string
	endpoint string
	tokens   oauth2.TokenSource
	client   *http.Client
}

// NewGeminiClient creates a client for the public Gemini API using an API key.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		name:   "gemini",
		model:  model,
		apiKey: apiKey,
		endpoint: fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
			model, url.QueryEscape(apiKey)),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// NewVertexClient creates a client for Vertex AI using Application Default
// Credentials. Failing to resolve credentials is a startup failure: the
// caller must not proceed without a working backend.
func NewVertexClient(ctx context.Context, project, region, model string) (*GeminiClient, error) {
	tokens, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("resolving application default credentials: %w", err)
	}
	return &GeminiClient{
		name:   "vertex",
		model:  model,
		tokens: tokens,
		endpoint: fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			region, project, region, model),
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Generate sends a generateContent request and returns the model turn.
func (g *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	payload, err := json.Marshal(g.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if g.tokens != nil {
		token, err := g.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("fetching access token: %w", err)
		}
		token.SetAuthHeader(httpReq)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := result.Candidates[0]
	content := candidate.Content
	if content.Role == "" {
		content.Role = RoleModel
	}

	return &GenerateResponse{
		Content:      content,
		FinishReason: candidate.FinishReason,
		Usage: Usage{
			InputTokens:  result.UsageMetadata.PromptTokenCount,
			OutputTokens: result.UsageMetadata.CandidatesTokenCount,
		},
		Model:    g.model,
		Duration: time.Since(start),
	}, nil
}

// Name returns the backend name.
func (g *GeminiClient) Name() string {
	return g.name
}

func (g *GeminiClient) buildRequestBody(req GenerateRequest) map[string]any {
	body := map[string]any{
		"contents": req.Contents,
	}

	if req.System != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.System}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  json.RawMessage(t.Parameters),
			}
		}
		body["tools"] = []map[string]any{{"functionDeclarations": decls}}
	}

	genCfg := map[string]any{}
	if req.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		genCfg["temperature"] = *req.Temperature
	}
	if len(genCfg) > 0 {
		body["generationConfig"] = genCfg
	}

	return body
}

// Wire response structures.

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}
