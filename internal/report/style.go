package report

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dealbrief/dealbrief/internal/llm"
	"github.com/dealbrief/dealbrief/internal/logging"
)

// stylePrompt asks the model to convert the markdown report into an
// HTML fragment for embedding in the document shell.
const stylePrompt = `Take the following raw negotiation strategy report (written in Markdown).
Your task is to convert it into a clean, professional HTML block.
Requirements:
1.  Respond ONLY with the HTML block. Do not add "` + "```html" + `" or any explanatory text.
2.  Use ` + "`<ul>`" + ` and ` + "`<li>`" + ` for bullet points.
3.  Use ` + "`<strong>`" + ` or ` + "`<b>`" + ` for bold text.
4.  Use ` + "`<mark>`" + ` tags for all key numerical data and key strategic phrases (e.g., "Walk-away Price").
5.  Wrap the entire output in a single ` + "`<div>`" + ` with class "report-content".
Input Report:
---
%s
---
`

var styleTemperature = 0.1

// Styler converts finished report text into a styled HTML fragment via
// a single model call, falling back to an escaped preformatted block.
type Styler struct {
	client llm.Client
	log    *logging.Logger
}

// NewStyler creates a styler over the given model client.
func NewStyler(client llm.Client, log *logging.Logger) *Styler {
	return &Styler{client: client, log: log.Sub("style")}
}

// Style returns the HTML fragment for the report text. On any model
// failure the raw text is returned escaped inside a <pre> block, so a
// report is always renderable.
func (s *Styler) Style(ctx context.Context, reportText string) string {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Contents:    []llm.Content{llm.UserText(fmt.Sprintf(stylePrompt, reportText))},
		Temperature: &styleTemperature,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("styling call failed, falling back to preformatted text")
		return FallbackFragment(reportText)
	}
	return stripCodeFence(resp.Text())
}

// stripCodeFence removes a markdown code fence wrapping the fragment.
// The prompt forbids fences but models still emit them now and then.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	i := strings.IndexByte(t, '\n')
	if i < 0 {
		return s
	}
	t = strings.TrimSpace(t[i+1:])
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// FallbackFragment renders the raw report text escaped in a <pre> block.
func FallbackFragment(reportText string) string {
	return fmt.Sprintf("<div class='report-content'><pre>%s</pre></div>", html.EscapeString(reportText))
}
