package output

import (
	"html/template"
	"io"
	"strings"

	"github.com/genesetlab/overrep/internal/enrich"
)

var htmlTemplate = template.Must(template.New("results").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.GeneSet}} vs {{.Library}}</h1>
<p>background: {{.Background}} ({{.GeneSetSize}} query genes), method: {{.Method}}, run at {{.CreatedAt.Format "2006-01-02 15:04:05"}}</p>
<table>
<tr><th>rank</th><th>term</th><th>description</th><th>overlap</th><th>overlap_size</th><th>p-value</th><th>fdr</th></tr>
{{- range .Results}}
<tr><td class="num">{{.Rank}}</td><td>{{.Term}}</td><td>{{.Description}}</td><td>{{join .Overlap}}</td><td class="num">{{.OverlapSize}}</td><td class="num">{{.PValue}}</td><td class="num">{{.FDR}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

// WriteHTML renders the run as a self-contained HTML page with the result
// table. Term names and descriptions are escaped by the template engine.
func WriteHTML(w io.Writer, run *enrich.Run) error {
	return htmlTemplate.Execute(w, run)
}
