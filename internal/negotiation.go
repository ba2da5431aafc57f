package internal

import (
	"net/http"
	"strings"
)

// Negotiation is the input of content negotiation for one request.
type Negotiation struct {
	ContentType string
	CLI         bool
	Ajax        bool
}

// NewNegotiation derives the negotiation inputs from a request.
func NewNegotiation(r *http.Request, contentType string, cli bool) Negotiation {
	return Negotiation{
		ContentType: contentType,
		CLI:         cli,
		Ajax:        !cli && r != nil && IsAjaxRequest(r),
	}
}

// IsAjaxRequest reports whether the request was sent with X-Requested-With: XMLHttpRequest.
func IsAjaxRequest(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("X-Requested-With")), "xmlhttprequest")
}

func (n Negotiation) IsJSON() bool { return !n.CLI && strings.Contains(n.ContentType, "json") }

func (n Negotiation) IsXML() bool { return !n.CLI && strings.Contains(n.ContentType, "xml") }

func (n Negotiation) IsSOAP() bool { return !n.CLI && strings.Contains(n.ContentType, "soap") }

// SelectRenderMode chooses the error page format.
// CLI or hidden errors render plain text; XML and SOAP render XML;
// AJAX and JSON render JSON; everything else renders HTML.
func SelectRenderMode(n Negotiation, showErrors bool) RenderMode {
	mode := RenderHTML
	if n.CLI || !showErrors {
		mode = RenderPlain
	}
	switch {
	case n.IsSOAP() || n.IsXML():
		mode = RenderXML
	case n.Ajax || n.IsJSON():
		mode = RenderJSON
	}
	return mode
}

// ResponseContentType chooses the content type of freshly created responses.
func ResponseContentType(n Negotiation) string {
	switch {
	case n.CLI:
		return ContentTypeText
	case n.Ajax || n.IsJSON():
		return ContentTypeJSON
	default:
		return ContentTypeHTML
	}
}
