package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
)

type expandRequest struct {
	Expression string `json:"expression"`
	Data       any    `json:"data"`
	Format     string `json:"format"`
}

type bindRequest struct {
	View     string `json:"view"`
	Template string `json:"template"`
	Data     any    `json:"data"`
	Format   string `json:"format"`
}

type templatesResponse struct {
	Templates    []string `json:"templates"`
	Conditionals []string `json:"conditionals"`
}

type templateResponse struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := checkFormat(req.Format); err != nil {
		s.fail(w, r, "expand", err)

		return
	}

	root, err := s.binder.Expander().Expand(r.Context(), req.Expression, req.Data)
	if err != nil {
		s.fail(w, r, "expand", err)

		return
	}

	s.metrics.Expansions.Inc()
	s.writeTree(w, r, "expand", root, req.Format)
}

func (s *Server) handleBind(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := checkFormat(req.Format); err != nil {
		s.fail(w, r, "bind", err)

		return
	}

	var (
		root *html.Node
		err  error
	)

	switch {
	case req.Template != "":
		root, err = s.binder.BindTemplate(r.Context(), req.Template, req.Data)

	case strings.TrimSpace(req.View) != "":
		root, err = dom.Parse(strings.NewReader(req.View))
		if err == nil {
			err = s.binder.Bind(r.Context(), root, req.Data)
		}

	default:
		err = ErrRequest.With(slog.String("reason", "view or template required"))
	}

	if err != nil {
		s.fail(w, r, "bind", err)

		return
	}

	s.metrics.Bindings.Inc()
	s.writeTree(w, r, "bind", root, req.Format)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	reg := s.binder.Registry()

	s.writeJSON(w, r, http.StatusOK, templatesResponse{
		Templates:    reg.TemplateIDs(),
		Conditionals: reg.ConditionalIDs(),
	})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, ok := s.binder.Registry().Template(id)
	if !ok {
		s.fail(w, r, "template", bind.ErrTemplateNotFound.With(slog.String("id", id)))

		return
	}

	s.writeJSON(w, r, http.StatusOK, templateResponse{ID: id, Body: body})
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "html", "yaml":
		return nil
	default:
		return ErrRequest.With(slog.String("format", format))
	}
}

// decode reads a JSON request body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		s.fail(w, r, "decode", ErrRequest.Wrap(err))

		return false
	}

	return true
}

func (s *Server) writeTree(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	root *html.Node,
	format string,
) {
	if strings.EqualFold(format, "yaml") {
		out, err := dom.MarshalYAML(root)
		if err != nil {
			s.fail(w, r, op, err)

			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)

		return
	}

	markup, err := dom.HTML{}.RenderString(root)
	if err != nil {
		s.fail(w, r, op, err)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(markup))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "write response",
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("error", err))
	}
}

// fail answers with a JSON error whose status follows the kind of err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusOf(err)

	attrs := []slog.Attr{
		slog.String("request_id", RequestID(r.Context())),
		slog.String("op", op),
		slog.Any("error", err),
	}

	if status >= http.StatusInternalServerError {
		s.metrics.IncrementFailures(op)
		s.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		s.logger.WarnContext(r.Context(), "request rejected", attrs...)
	}

	s.writeJSON(w, r, status, errorResponse{
		Error:     err.Error(),
		RequestID: RequestID(r.Context()),
	})
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, bind.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRequest), errors.Is(err, dom.ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
