package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// documentTemplate is the fixed shell every report is rendered into.
// The styled fragment is model-produced HTML and embedded as-is; the
// title and timestamp are escaped by the template engine.
const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Negotiation Strategy Report: {{.CustomerName}}</title>
    <style>
        body { font-family: 'Arial', sans-serif; line-height: 1.6; padding: 20px; background-color: #f9f9f9; }
        .container { max-width: 900px; margin: 0 auto; background: #fff; padding: 30px; border-radius: 8px; box-shadow: 0 0 20px rgba(0,0,0,0.1); position: relative; }
        .timestamp { position: absolute; top: 10px; right: 30px; font-size: 0.9em; color: #777; }
        h1 { color: #1a73e8; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        h2 { color: #333; margin-top: 30px; }
        .report-content { background: #fdfdfd; padding: 15px; border: 1px solid #eee; border-radius: 5px; white-space: normal; }
        .report-content ul { padding-left: 20px; }
        .report-content mark { background-color: #fcf8e3; padding: 2px 4px; border-radius: 3px; }
        .visualization { text-align: center; margin-top: 20px; border: 1px solid #ddd; padding: 10px; border-radius: 5px; }
        .visualization img { max-width: 100%; height: auto; border-radius: 5px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="timestamp">Generated: {{.GeneratedAt}}</div>
        <h1>&#128202; Negotiation Strategy Report: {{.CustomerName}}</h1>
        <h2>&#9989; AI Text Analysis</h2>
        {{.Fragment}}
        <h2>&#128444;&#65039; Data Visualization</h2>
        <div class="visualization">
            <img src="data:image/png;base64,{{.ImageBase64}}" alt="Data Visualization Chart (Generation failed or not supported)">
        </div>
    </div>
</body>
</html>
`

var documentTmpl = template.Must(template.New("report").Parse(documentTemplate))

type documentData struct {
	CustomerName string
	GeneratedAt  string
	Fragment     template.HTML
	ImageBase64  template.URL
}

// Assemble renders the full HTML document for a report. imageBase64 may
// be empty; the image slot then renders its alt text.
func Assemble(customerName, styledFragment, imageBase64 string, generatedAt time.Time) (string, error) {
	var b strings.Builder
	err := documentTmpl.Execute(&b, documentData{
		CustomerName: customerName,
		GeneratedAt:  generatedAt.Format("2006-01-02 15:04:05"),
		Fragment:     template.HTML(styledFragment),
		ImageBase64:  template.URL(imageBase64),
	})
	if err != nil {
		return "", fmt.Errorf("rendering report document: %w", err)
	}
	return b.String(), nil
}
