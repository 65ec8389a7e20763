package mailer

import (
	"bytes"
	"html/template"
)

var layout = template.Must(template.New("email").Parse(`<!doctype html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#1f2937">
<p>Hi {{.Name}},</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Tags}}<p>Trending tags: {{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
{{end}}{{if .Link}}<p><a href="{{.Link}}">{{.LinkText}}</a></p>
{{end}}<p>{{.SignOff}}<br>The Studio Space Team</p>
</body></html>`))

type message struct {
	Name       string
	Paragraphs []string
	Tags       []string
	Link       string
	LinkText   string
	SignOff    string
}

func render(m message) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}
