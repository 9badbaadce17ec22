package server

import (
	"html/template"
	"net/http"

	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/logger"
)

// indexHandler renders the run-submission form.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data := indexData{
		RunTypes: engine.RunTypes,
		Models:   s.knownModels(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logger.Errorf("Failed to render index page: %v", err)
	}
}

type indexData struct {
	RunTypes []engine.RunType
	Models   []string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>evalgate</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
fieldset { margin-bottom: 1rem; }
label { display: block; margin: 0.5rem 0; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
button { margin-right: 0.5rem; }
</style>
</head>
<body>
<h1>evalgate</h1>
<p>Submit an evaluation run or preview what one would do.</p>
<form id="run-form">
  <fieldset>
    <legend>Run type</legend>
    <select name="run_type" id="run_type">
      {{range .RunTypes}}<option value="{{.}}">{{.}}</option>
      {{end}}
    </select>
  </fieldset>
  <fieldset>
    <legend>Parameters</legend>
    <label>Model
      <select name="model_name" id="model_name">
        <option value=""></option>
        {{range .Models}}<option value="{{.}}">{{.}}</option>
        {{end}}
      </select>
    </label>
    <label>Pattern <input type="text" name="pattern" id="pattern"></label>
    <label>Count <input type="number" name="count" id="count" min="1"></label>
  </fieldset>
  <fieldset>
    <legend>Flags</legend>
    <label><input type="checkbox" id="no_cache"> Disable cache</label>
    <label><input type="checkbox" id="verbose"> Verbose output</label>
    <label><input type="checkbox" id="no_html"> Skip HTML report</label>
  </fieldset>
  <button type="button" onclick="submitTo('/preview')">Preview</button>
  <button type="button" onclick="submitTo('/runs')">Run</button>
</form>
<h2>Result</h2>
<pre id="result">(nothing yet)</pre>
<script>
async function submitTo(path) {
  const payload = {
    run_type: document.getElementById('run_type').value,
    model_name: document.getElementById('model_name').value,
    pattern: document.getElementById('pattern').value,
    count: parseInt(document.getElementById('count').value) || 0,
    no_cache: document.getElementById('no_cache').checked,
    verbose: document.getElementById('verbose').checked,
    no_html: document.getElementById('no_html').checked,
  };
  document.getElementById('result').textContent = 'running...';
  const resp = await fetch(path, {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(payload),
  });
  const body = await resp.json();
  document.getElementById('result').textContent = JSON.stringify(body, null, 2);
}
</script>
</body>
</html>
`))
