package internal_test

import (
	"encoding/xml"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
)

func TestErrorRenderer_Render(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("load user: %w", cause)

	t.Run("plain", func(t *testing.T) {
		t.Parallel()

		out, rerr := internal.NewRenderer().Render(err, internal.RenderPlain)
		require.NoError(t, rerr)
		require.Equal(t, "fmt.wrapError: load user: connection refused", out)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, rerr := internal.NewRenderer().Render(err, internal.RenderJSON)
		require.NoError(t, rerr)
		require.JSONEq(t, `{"error":{
			"type":"fmt.wrapError",
			"message":"load user: connection refused",
			"chain":["errors.errorString: connection refused"],
			"status":500
		}}`, out)
	})

	t.Run("json without detail", func(t *testing.T) {
		t.Parallel()

		out, rerr := internal.NewRenderer(internal.WithRendererDetail(false)).Render(err, internal.RenderJSON)
		require.NoError(t, rerr)
		require.NotContains(t, out, "chain")
	})

	t.Run("xml", func(t *testing.T) {
		t.Parallel()

		out, rerr := internal.NewRenderer().Render(internal.NewHTTPError(404, "missing"), internal.RenderXML)
		require.NoError(t, rerr)
		require.Contains(t, out, xml.Header)

		var doc struct {
			Error struct {
				Type    string `xml:"type"`
				Message string `xml:"message"`
				Status  int    `xml:"status"`
			} `xml:"error"`
		}
		require.NoError(t, xml.Unmarshal([]byte(out), &doc))
		require.Equal(t, "internal.HTTPError", doc.Error.Type)
		require.Equal(t, "missing", doc.Error.Message)
		require.Equal(t, 404, doc.Error.Status)
	})

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRenderer(internal.WithRendererTitle("Oops"))
		out, rerr := r.Render(errors.New(`<script>alert("x")</script>bad & worse`), internal.RenderHTML)
		require.NoError(t, rerr)
		require.Contains(t, out, "<title>Oops</title>")
		require.Contains(t, out, "bad &amp; worse")
		require.NotContains(t, out, "<script>")
		require.NotContains(t, out, "&amp;amp;")
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()

		_, rerr := internal.NewRenderer().Render(err, internal.RenderMode(42))
		require.Error(t, rerr)
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		_, rerr := internal.NewRenderer().Render(nil, internal.RenderPlain)
		require.Error(t, rerr)
	})
}

func TestRenderMode_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "plain", internal.RenderPlain.String())
	require.Equal(t, "json", internal.RenderJSON.String())
	require.Equal(t, "xml", internal.RenderXML.String())
	require.Equal(t, "html", internal.RenderHTML.String())
	require.Equal(t, "mode(9)", internal.RenderMode(9).String())
}

func TestErrorType(t *testing.T) {
	t.Parallel()

	require.Equal(t, "errors.errorString", internal.ErrorType(errors.New("x")))
	require.Equal(t, "internal.RouteNotFoundError", internal.ErrorType(&internal.RouteNotFoundError{}))
}
