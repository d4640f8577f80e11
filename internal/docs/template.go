package docs

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>apibind interfaces</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; color: #1a1a1a; }
  h1 { border-bottom: 2px solid #ddd; padding-bottom: .4rem; }
  h2 { margin-top: 2rem; }
  code { background: #f4f4f4; padding: .1rem .3rem; border-radius: 3px; }
  table { border-collapse: collapse; width: 100%; margin: .6rem 0; }
  th, td { text-align: left; border-bottom: 1px solid #eee; padding: .35rem .6rem; }
  .meta { color: #666; font-size: .85rem; }
  .constraint { color: #8a5d00; font-size: .85rem; }
  .doc { color: #444; white-space: pre-line; }
</style>
</head>
<body>
<h1>apibind interfaces</h1>
{{if .LastRun}}
<p class="meta">Indexed {{.LastRun.FinishedAt.Format "2006-01-02 15:04:05"}} &middot;
{{.LastRun.Interfaces}} interfaces &middot; {{.LastRun.Operations}} operations &middot;
{{.LastRun.Bindings}} bindings</p>
{{else}}
<p class="meta">Index is empty. Run <code>apibind index</code> first.</p>
{{end}}

{{range .Interfaces}}
<h2><code>{{.Name}}</code> <span class="meta">{{.Package}} &middot; {{.File}}:{{.Line}}</span></h2>
{{if .Constraint}}<p class="constraint">requires {{.Constraint}}</p>{{end}}
{{if .Doc}}<p class="doc">{{.Doc}}</p>{{end}}
<table>
<tr><th>Operation</th><th>Signature</th><th>Availability</th></tr>
{{range .Operations}}
<tr>
  <td><code>{{.Name}}</code></td>
  <td><code>{{.Signature}}</code></td>
  <td>{{if .Constraint}}<span class="constraint">{{.Constraint}}</span>{{else}}always{{end}}</td>
</tr>
{{end}}
</table>
{{if .Bindings}}
<p class="meta">Bound by:
{{range .Bindings}}<code>{{.Marker}}</code> ({{.Package}}, {{.File}}:{{.Line}}) {{end}}</p>
{{else}}
<p class="meta">No binding in the indexed tree.</p>
{{end}}
{{end}}
</body>
</html>
`
