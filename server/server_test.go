package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
	"github.com/ardnew/haiku/log"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer

	logger := log.Make(&logs, log.WithLevel(log.LevelDebug))

	reg := bind.NewRegistry()
	require.NoError(t, reg.AddTemplate("card", "div.card>h3{$name;}+p[data-binding=bio]"))
	require.NoError(t, reg.AddTemplate("row", "li{$n;}"))

	_, err := reg.AddConditionalsMap("by-kind", bind.ConditionalMap{Field: "kind", Default: "row"})
	require.NoError(t, err)

	binder := bind.New(lang.New[*html.Node](dom.HTML{}, lang.WithLogger(logger)), reg)

	return New(binder, append([]Option{WithLogger(logger)}, opts...)...), &logs
}

func post(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestExpand(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/expand", map[string]any{
		"expression": "ul#nav>li{$name;}+li{$n;}",
		"data":       map[string]any{"name": "Bo", "n": 2},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<ul id="nav"><li>Bo</li><li>2</li></ul>`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err, "generated request id")
}

func TestExpand_YAML(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/expand", map[string]any{
		"expression": "p.note{hi}",
		"format":     "yaml",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "tag: p")
	assert.Contains(t, rec.Body.String(), "- note")
}

func TestExpand_BadRequests(t *testing.T) {
	s, logs := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed JSON", `{"expression": `},
		{"unknown field", `{"expresion": "p"}`},
		{"unknown format", map[string]any{"expression": "p", "format": "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/expand", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeError(t, rec)
			assert.Contains(t, resp.Error, "invalid request")
			assert.Equal(t, rec.Header().Get(HeaderRequestID), resp.RequestID)
		})
	}

	assert.Contains(t, logs.String(), "request rejected")
}

func TestExpand_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, WithMaxBody(16))

	rec := post(t, s, "/expand", map[string]any{"expression": strings.Repeat("p+", 32)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestIDEcho(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set(HeaderRequestID, "abc-123")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestBind_View(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/bind", map[string]any{
		"view": `<ul data-children-binding="items" data-template="row"></ul><b data-binding="title"></b>`,
		"data": map[string]any{
			"title": "Rows",
			"items": []any{map[string]any{"n": 1}, map[string]any{"n": 2}},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`<ul data-children-binding="items" data-template="row"><li>1</li><li>2</li></ul>`+
			`<b data-binding="title">Rows</b>`,
		rec.Body.String())
}

func TestBind_Template(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/bind", map[string]any{
		"template": "card",
		"data":     map[string]any{"name": "Ada", "bio": "math"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<div class="card"><h3>Ada</h3><p data-binding="bio">math</p></div>`, rec.Body.String())

	rec = post(t, s, "/bind", map[string]any{"template": "absent"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, s, "/bind", map[string]any{"data": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplates(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/templates")
	require.Equal(t, http.StatusOK, rec.Code)

	var list templatesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, []string{"card", "row"}, list.Templates)
	assert.Equal(t, []string{"by-kind"}, list.Conditionals)

	rec = get(s, "/templates/row")
	require.Equal(t, http.StatusOK, rec.Code)

	var one templateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&one))
	assert.Equal(t, templateResponse{ID: "row", Body: "li{$n;}"}, one)

	rec = get(s, "/templates/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "template not found")
}

// previewResult parses a preview page and returns the srcdoc of its result
// frame, failing when any script element or event handler attribute
// reaches the page itself.
func previewResult(t *testing.T, body string) (srcdoc string, framed bool) {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			assert.NotEqual(t, "script", n.Data, "script element in preview page")

			for _, a := range n.Attr {
				assert.False(t, strings.HasPrefix(strings.ToLower(a.Key), "on"),
					"event handler %s=%q on <%s>", a.Key, a.Val, n.Data)
			}

			if n.Data == "iframe" {
				framed = true

				for _, a := range n.Attr {
					switch a.Key {
					case "sandbox":
						assert.NotContains(t, a.Val, "allow-scripts")
					case "srcdoc":
						srcdoc = a.Val
					}
				}

				_, sandboxed := dom.HTML{}.Attribute(n, "sandbox")
				assert.True(t, sandboxed, "result frame is not sandboxed")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return srcdoc, framed
}

func TestPreview(t *testing.T) {
	s, _ := newTestServer(t)

	q := url.Values{}
	q.Set("expr", "ul#nav>li{$name;}")
	q.Set("data", `{"name": "Bo"}`)

	rec := get(s, "/preview?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'none'")

	body := rec.Body.String()
	assert.Contains(t, body, "<title>haiku preview</title>")

	srcdoc, framed := previewResult(t, body)
	require.True(t, framed)
	assert.Equal(t, `<ul id="nav"><li>Bo</li></ul>`, srcdoc)

	rec = get(s, "/preview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="result"`)

	rec = get(s, "/preview?expr=p&data=%7Bbad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview_ScriptStaysInSandbox(t *testing.T) {
	s, _ := newTestServer(t)

	q := url.Values{}
	q.Set("expr", "script{alert(document.cookie)}+img[src=x,onerror=alert(1)]")

	rec := get(s, "/preview?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	srcdoc, framed := previewResult(t, rec.Body.String())
	require.True(t, framed)
	assert.Contains(t, srcdoc, "<script>alert(document.cookie)</script>")
	assert.Contains(t, srcdoc, `onerror="alert(1)"`)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	require.Equal(t, http.StatusOK, post(t, s, "/expand", map[string]any{"expression": "p"}).Code)
	require.Equal(t, http.StatusNotFound, get(s, "/templates/nope").Code)

	rec := get(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "haiku_expansions_total 1")
	assert.Contains(t, text, `haiku_http_requests_total{code="200",route="/expand"} 1`)
	assert.Contains(t, text, `haiku_http_requests_total{code="404",route="/templates/{id}"} 1`)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
