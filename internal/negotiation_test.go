package internal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
)

func TestSelectRenderMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		cli         bool
		ajax        bool
		show        bool
		want        internal.RenderMode
	}{
		{"html page", "text/html", false, false, true, internal.RenderHTML},
		{"no content type", "", false, false, true, internal.RenderHTML},
		{"hidden errors", "text/html", false, false, false, internal.RenderPlain},
		{"cli", "", true, false, true, internal.RenderPlain},
		{"cli ignores json", "application/json", true, false, true, internal.RenderPlain},
		{"json", "application/json", false, false, true, internal.RenderJSON},
		{"json with hidden errors", "application/json", false, false, false, internal.RenderJSON},
		{"ajax", "", false, true, true, internal.RenderJSON},
		{"xml", "application/xml", false, false, true, internal.RenderXML},
		{"soap", "application/soap+xml", false, false, true, internal.RenderXML},
		{"xml beats ajax", "text/xml", false, true, true, internal.RenderXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := internal.Negotiation{ContentType: tt.contentType, CLI: tt.cli, Ajax: tt.ajax}
			first := internal.SelectRenderMode(n, tt.show)
			require.Equal(t, tt.want, first)
			require.Equal(t, first, internal.SelectRenderMode(n, tt.show))
		})
	}
}

func TestResponseContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    internal.Negotiation
		want string
	}{
		{"cli", internal.Negotiation{CLI: true, ContentType: "application/json"}, internal.ContentTypeText},
		{"ajax", internal.Negotiation{Ajax: true}, internal.ContentTypeJSON},
		{"json", internal.Negotiation{ContentType: "application/json"}, internal.ContentTypeJSON},
		{"default", internal.Negotiation{}, internal.ContentTypeHTML},
		{"xml", internal.Negotiation{ContentType: "application/xml"}, internal.ContentTypeHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, internal.ResponseContentType(tt.n))
		})
	}
}

func TestNewNegotiation(t *testing.T) {
	t.Parallel()

	r := newRequest(http.MethodGet, "/")
	r.Header.Set("X-Requested-With", "xmlhttprequest")

	n := internal.NewNegotiation(r, "application/json", false)
	require.True(t, n.Ajax)
	require.True(t, n.IsJSON())

	n = internal.NewNegotiation(r, "application/json", true)
	require.False(t, n.Ajax)
	require.False(t, n.IsJSON())

	n = internal.NewNegotiation(nil, "", false)
	require.False(t, n.Ajax)
}
