package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dealbrief/dealbrief/internal/llm"
)

// Tool is a capability the model can invoke during a conversation.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's arguments.
	ParameterSchema() string

	// Execute runs the tool with the given arguments and returns the
	// result payload. The payload is passed through to the model
	// verbatim; errors are folded into the conversation by the runner.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds the tools available to the model, in registration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name replaces the handler.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Resolve returns a tool by exact name match.
func (r *Registry) Resolve(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Declarations returns model-ready tool declarations in registration order.
func (r *Registry) Declarations() []llm.ToolDeclaration {
	decls := make([]llm.ToolDeclaration, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		decls = append(decls, llm.ToolDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  json.RawMessage(t.ParameterSchema()),
		})
	}
	return decls
}

// ArgumentError reports tool-call arguments that fail the declared schema.
type ArgumentError struct {
	Tool   string
	Issues []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, strings.Join(e.Issues, "; "))
}

// ValidateArgs checks arguments against the tool's declared schema before
// dispatch, so malformed calls are rejected locally instead of reaching
// the tool's backend.
func ValidateArgs(t Tool, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(t.ParameterSchema()),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("validating arguments for tool %s: %w", t.Name(), err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &ArgumentError{Tool: t.Name(), Issues: issues}
}
