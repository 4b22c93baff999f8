package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/ardnew/haiku/dom"
)

// handlePreview renders a page with a form for an expression and its data,
// followed by the expansion in a sandboxed frame and its markup.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("expr")
	raw := r.URL.Query().Get("data")

	var data any
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			s.fail(w, r, "preview", ErrRequest.Wrap(err))

			return
		}
	}

	var result []g.Node

	if expr != "" {
		root, err := s.binder.Expander().Expand(r.Context(), expr, data)
		if err != nil {
			s.fail(w, r, "preview", err)

			return
		}

		var markup strings.Builder
		if err := dom.Component(root).Render(&markup); err != nil {
			s.fail(w, r, "preview", err)

			return
		}

		s.metrics.Expansions.Inc()

		// The expression comes from the URL, so its result only ever runs
		// inside a sandboxed frame with no scripts and an opaque origin.
		result = []g.Node{
			h.Section(h.ID("result"),
				h.IFrame(g.Attr("sandbox"), g.Attr("srcdoc", markup.String()), h.Title("result")),
			),
			h.Pre(h.Code(g.Text(markup.String()))),
		}
	}

	page := c.HTML5(c.HTML5Props{
		Title:    "haiku preview",
		Language: "en",
		Body: []g.Node{
			h.Main(
				h.H1(g.Text("haiku")),
				h.Form(h.Method("get"), h.Action("/preview"),
					h.Input(h.Type("text"), h.Name("expr"), h.Value(expr)),
					h.Textarea(h.Name("data"), g.Text(raw)),
					h.Button(h.Type("submit"), g.Text("Expand")),
				),
				g.Group(result),
			),
		},
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "script-src 'none'; object-src 'none'; base-uri 'none'")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := page.Render(w); err != nil {
		s.logger.WarnContext(r.Context(), "render preview", slog.Any("error", err))
	}
}
