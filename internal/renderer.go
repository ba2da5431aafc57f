package internal

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/microcosm-cc/bluemonday"
)

// RenderMode selects the output format of the error renderer.
type RenderMode int

const (
	RenderPlain RenderMode = iota
	RenderJSON
	RenderXML
	RenderHTML
)

func (m RenderMode) String() string {
	switch m {
	case RenderPlain:
		return "plain"
	case RenderJSON:
		return "json"
	case RenderXML:
		return "xml"
	case RenderHTML:
		return "html"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Renderer formats an error for the error response body.
type Renderer interface {
	Render(err error, mode RenderMode) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(err error, mode RenderMode) (string, error)

func (f RendererFunc) Render(err error, mode RenderMode) (string, error) {
	return f(err, mode)
}

// ErrorRenderer is the default Renderer.
type ErrorRenderer struct {
	page   *template.Template
	policy *bluemonday.Policy
	title  string
	detail bool
}

// RendererOption configures ErrorRenderer.
type RendererOption func(*ErrorRenderer)

// WithRendererDetail toggles the wrapped error chain in JSON, XML and HTML output.
func WithRendererDetail(detail bool) RendererOption {
	return func(r *ErrorRenderer) {
		r.detail = detail
	}
}

// WithRendererTitle sets the HTML page title.
func WithRendererTitle(title string) RendererOption {
	return func(r *ErrorRenderer) {
		if title != "" {
			r.title = title
		}
	}
}

// NewRenderer creates the default error renderer.
func NewRenderer(opts ...RendererOption) *ErrorRenderer {
	r := &ErrorRenderer{
		page:   template.Must(template.New("error").Parse(errorPageTemplate)),
		policy: bluemonday.StrictPolicy(),
		title:  "Whoops! There was an error.",
		detail: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorReport is the structured view shared by the JSON and XML formats.
type errorReport struct {
	XMLName xml.Name `json:"-" xml:"error"`
	Type    string   `json:"type" xml:"type"`
	Message string   `json:"message" xml:"message"`
	Chain   []string `json:"chain,omitempty" xml:"chain>cause,omitempty"`
	Status  int      `json:"status" xml:"status"`
}

type htmlReport struct {
	Type    string
	Message template.HTML
	Chain   []template.HTML
	Status  int
}

func (r *ErrorRenderer) Render(err error, mode RenderMode) (string, error) {
	if err == nil {
		return "", errors.New("nothing to render")
	}
	report := r.report(err)

	switch mode {
	case RenderPlain:
		return fmt.Sprintf("%s: %s", report.Type, report.Message), nil
	case RenderJSON:
		data, err := sonic.ConfigStd.Marshal(map[string]errorReport{"error": report})
		if err != nil {
			return "", err
		}
		return string(data), nil
	case RenderXML:
		data, err := xml.Marshal(struct {
			XMLName xml.Name `xml:"root"`
			Error   errorReport
		}{Error: report})
		if err != nil {
			return "", err
		}
		return xml.Header + string(data), nil
	case RenderHTML:
		// StrictPolicy output is escaped text.
		view := htmlReport{
			Type:    report.Type,
			Status:  report.Status,
			Message: template.HTML(r.policy.Sanitize(report.Message)), //nolint:gosec // sanitized above
		}
		for _, c := range report.Chain {
			view.Chain = append(view.Chain, template.HTML(r.policy.Sanitize(c))) //nolint:gosec // sanitized above
		}
		var buf bytes.Buffer
		if err := r.page.Execute(&buf, struct {
			Title  string
			Report htmlReport
		}{r.title, view}); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unsupported render mode %s", mode)
	}
}

func (r *ErrorRenderer) report(err error) errorReport {
	rep := errorReport{
		Type:    ErrorType(err),
		Message: err.Error(),
		Status:  StatusFromError(err),
	}
	if r.detail {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			rep.Chain = append(rep.Chain, fmt.Sprintf("%s: %s", ErrorType(cause), cause.Error()))
		}
	}
	return rep
}

// ErrorType returns the dynamic type name of err without pointer markers.
func ErrorType(err error) string {
	return strings.TrimLeft(fmt.Sprintf("%T", err), "*")
}

const errorPageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>{{.Report.Type}} ({{.Report.Status}})</h2>
<p class="message">{{.Report.Message}}</p>
{{- if .Report.Chain}}
<ol class="chain">
{{- range .Report.Chain}}
<li>{{.}}</li>
{{- end}}
</ol>
{{- end}}
</body>
</html>
`
