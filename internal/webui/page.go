package webui

import (
	"html/template"
	"net/http"
)

// indexTemplate is the dashboard form page. The script drives the job
// lifecycle: POST /reports, stream /ws?job=<id>, then link the report.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Sales Negotiation Strategy Agent</title>
    <style>
        body { font-family: 'Arial', sans-serif; max-width: 700px; margin: 40px auto; padding: 0 20px; color: #222; }
        h1 { color: #1a73e8; }
        label { display: block; margin-top: 16px; font-weight: bold; }
        select, input[type=text] { width: 100%; padding: 8px; margin-top: 4px; box-sizing: border-box; }
        button { margin-top: 20px; padding: 10px 24px; background: #1a73e8; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
        button:disabled { background: #aaa; }
        #progress { margin-top: 24px; font-family: monospace; font-size: 0.9em; white-space: pre-wrap; background: #f5f5f5; padding: 12px; border-radius: 4px; min-height: 2em; }
        #result a { display: inline-block; margin-top: 12px; }
    </style>
</head>
<body>
    <h1>Sales Negotiation Strategy Agent</h1>
    <p>Pick a customer and a negotiation purpose; the agent analyses the
    customer record and produces a strategy report with a price chart.</p>
    <form id="report-form">
        <label for="customer">Target customer</label>
        {{if .Customers}}
        <select id="customer" name="customer_name">
            {{range .Customers}}<option value="{{.}}">{{.}}</option>{{end}}
        </select>
        {{else}}
        <input type="text" id="customer" name="customer_name" placeholder="Customer name">
        {{end}}
        <label for="purpose">Negotiation purpose</label>
        <input type="text" id="purpose" name="purpose" value="Focus on maximizing profit margin">
        <button type="submit" id="go">Generate negotiation report</button>
    </form>
    <div id="progress"></div>
    <div id="result"></div>
    <script>
    const form = document.getElementById('report-form');
    const progress = document.getElementById('progress');
    const result = document.getElementById('result');
    form.addEventListener('submit', async (e) => {
        e.preventDefault();
        document.getElementById('go').disabled = true;
        progress.textContent = '';
        result.textContent = '';
        const body = {
            customer_name: document.getElementById('customer').value,
            purpose: document.getElementById('purpose').value,
        };
        const resp = await fetch('/reports', {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify(body),
        });
        if (!resp.ok) {
            progress.textContent = 'failed to start job';
            document.getElementById('go').disabled = false;
            return;
        }
        const job = await resp.json();
        const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        const ws = new WebSocket(proto + '//' + location.host + '/ws?job=' + job.id);
        ws.onmessage = (msg) => {
            const ev = JSON.parse(msg.data);
            progress.textContent += ev.event + '\n';
            if (ev.event === 'job_completed') {
                result.innerHTML = '<a href="/reports/' + job.id + '" target="_blank">View report</a> ' +
                    '<a href="/reports/' + job.id + '/download">Download</a>';
            } else if (ev.event === 'job_failed') {
                result.textContent = 'Report failed: ' + (ev.data.error || 'unknown error');
            }
        };
        ws.onclose = () => { document.getElementById('go').disabled = false; };
    });
    </script>
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

func (s *Server) renderIndex(w http.ResponseWriter, customers []string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct{ Customers []string }{customers}); err != nil {
		s.log.Error().Err(err).Msg("rendering index page")
	}
}
