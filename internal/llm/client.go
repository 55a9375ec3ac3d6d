// Package llm defines the generative model client interface and the
// conversation wire types shared by the agent loop and the post-processor.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Role constants for conversation turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// FunctionCall is a model request to invoke a named tool.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool's result back into the conversation.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Part is one unit of content within a turn. Exactly one field is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FunctionResponsePart builds a tool-result part.
func FunctionResponsePart(name string, response map[string]any) Part {
	return Part{FunctionResponse: &FunctionResponse{Name: name, Response: response}}
}

// Content is a single role-attributed turn in a conversation.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// UserText builds a user turn with one text part.
func UserText(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

// ToolDeclaration describes a callable tool for the model.
// Parameters holds the JSON Schema for the tool's arguments.
type ToolDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// GenerateRequest is the input to a Generate call.
type GenerateRequest struct {
	System      string            `json:"system,omitempty"`
	Contents    []Content         `json:"contents"`
	Tools       []ToolDeclaration `json:"tools,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   int               `json:"maxTokens,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// GenerateResponse is the result of one model call.
type GenerateResponse struct {
	Content      Content       `json:"content"` // the model turn, role "model"
	FinishReason string        `json:"finishReason,omitempty"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// Text concatenates all text parts of the model turn.
func (r *GenerateResponse) Text() string {
	var b strings.Builder
	for _, p := range r.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// FunctionCalls returns the tool-call requests in the model turn,
// in part order.
func (r *GenerateResponse) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range r.Content.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}

// Client is the interface all model backends implement.
type Client interface {
	// Generate sends the conversation and returns the next model turn.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Name returns the backend name (e.g. "gemini", "vertex").
	Name() string
}
