// Package agent implements the conversation loop that drives a
// tool-using model to a final strategy report.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/llm"
	"github.com/dealbrief/dealbrief/internal/logging"
)

// ErrToolLoopExceeded means the model kept requesting tools past the
// configured round limit without producing a final answer.
var ErrToolLoopExceeded = errors.New("tool loop exceeded maximum rounds")

// Config configures the runner.
type Config struct {
	Model         string
	MaxToolRounds int // tool dispatches allowed before the loop is declared stuck
	MaxTokens     int
	Temperature   *float64
}

// Request asks for one strategy report.
type Request struct {
	CustomerName string
	Purpose      string
}

// Result is the outcome of a completed conversation.
type Result struct {
	Text           string        `json:"text"`
	ModelCalls     int           `json:"modelCalls"`
	ToolDispatches int           `json:"toolDispatches"`
	Usage          llm.Usage     `json:"usage"`
	Model          string        `json:"model,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Runner drives the conversation loop: submit turns, dispatch the
// model's tool calls, fold results back in, and stop when the model
// answers without requesting a tool.
type Runner struct {
	cfg    Config
	client llm.Client
	tools  *Registry
	hooks  *hooks.Manager
	log    *logging.Logger
}

// NewRunner creates a runner. The hook manager may be nil.
func NewRunner(cfg Config, client llm.Client, tools *Registry, hm *hooks.Manager, log *logging.Logger) *Runner {
	if cfg.MaxToolRounds < 1 {
		cfg.MaxToolRounds = 8
	}
	return &Runner{
		cfg:    cfg,
		client: client,
		tools:  tools,
		hooks:  hm,
		log:    log.Sub("agent"),
	}
}

// Run executes the conversation for one report request and returns the
// final report text. A model-call failure aborts the whole conversation;
// tool failures never do — they are surfaced to the model as data.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	conv := NewConversation(llm.UserText(BuildPrompt(req.CustomerName, req.Purpose)))
	decls := r.tools.Declarations()

	r.log.Info().
		Str("customer", req.CustomerName).
		Int("maxToolRounds", r.cfg.MaxToolRounds).
		Msg("starting conversation")

	var usage llm.Usage
	modelCalls := 0
	dispatches := 0

	// Each round is one model call plus at most one tool dispatch. The
	// round after the last permitted dispatch may only produce a final
	// answer; another tool request there means the loop is stuck.
	for round := 0; round <= r.cfg.MaxToolRounds; round++ {
		resp, err := r.client.Generate(ctx, llm.GenerateRequest{
			System:      SystemInstruction(),
			Contents:    conv.Turns(),
			Tools:       decls,
			Temperature: r.cfg.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}
		modelCalls++
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			conv.Append(resp.Content)
			r.log.Info().
				Int("modelCalls", modelCalls).
				Int("toolDispatches", dispatches).
				Dur("duration", time.Since(start)).
				Msg("conversation finished")
			return &Result{
				Text:           resp.Text(),
				ModelCalls:     modelCalls,
				ToolDispatches: dispatches,
				Usage:          usage,
				Model:          r.cfg.Model,
				Duration:       time.Since(start),
			}, nil
		}

		if round == r.cfg.MaxToolRounds {
			r.log.Error().Int("rounds", dispatches).Msg("model still requesting tools at round limit")
			return nil, ErrToolLoopExceeded
		}

		// First-call-only policy: when a model turn carries several tool
		// calls, only the first is honored and the rest are discarded.
		call := calls[0]
		if len(calls) > 1 {
			r.log.Warn().
				Int("discarded", len(calls)-1).
				Str("honored", call.Name).
				Msg("multiple tool calls in one turn, honoring the first only")
		}

		r.emit(ctx, hooks.EventToolCall, map[string]any{
			"tool": call.Name,
			"args": call.Args,
		})

		payload := r.dispatch(ctx, call)
		dispatches++

		r.emit(ctx, hooks.EventToolResult, map[string]any{
			"tool":  call.Name,
			"error": payload["error"],
		})

		// The model turn carrying the call is appended first, then the
		// result turn, so the sequence the model sees next round is
		// model-call followed by tool-result.
		conv.Append(resp.Content)
		conv.Append(llm.Content{
			Role:  llm.RoleTool,
			Parts: []llm.Part{llm.FunctionResponsePart(call.Name, payload)},
		})
	}

	return nil, ErrToolLoopExceeded
}

// dispatch resolves and executes one tool call. It always returns a
// payload: resolution failures, argument failures, and execution
// failures all become structured error objects the model can react to.
func (r *Runner) dispatch(ctx context.Context, call llm.FunctionCall) map[string]any {
	tool, ok := r.tools.Resolve(call.Name)
	if !ok {
		r.log.Error().Str("tool", call.Name).Msg("model requested unknown tool")
		return map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
	}

	if err := ValidateArgs(tool, call.Args); err != nil {
		r.log.Warn().Str("tool", call.Name).Err(err).Msg("tool arguments failed schema validation")
		return map[string]any{"error": err.Error()}
	}

	r.log.Debug().Str("tool", call.Name).Msg("executing tool")
	payload, err := tool.Execute(ctx, call.Args)
	if err != nil {
		r.log.Warn().Str("tool", call.Name).Err(err).Msg("tool execution failed")
		return map[string]any{"error": fmt.Sprintf("Tool execution failed: %s", err)}
	}
	return payload
}

func (r *Runner) emit(ctx context.Context, event string, data map[string]any) {
	if r.hooks != nil {
		r.hooks.Emit(ctx, event, data)
	}
}
