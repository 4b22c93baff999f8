package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	msgStyle    = lipgloss.NewStyle().Bold(true)

	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		h.writeAttr(buf, nil, slog.Time(slog.TimeKey, r.Time))
	}

	h.writeLevel(buf, r.Level)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeAttr(buf, nil,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(msgStyle.Render(r.Message))

	for _, a := range h.attrs {
		h.writeAttr(buf, nil, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.groups, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	qualified = append(qualified, h.attrs...)

	for _, a := range attrs {
		if len(h.groups) > 0 {
			a.Key = strings.Join(h.groups, ".") + "." + a.Key
		}

		qualified = append(qualified, a)
	}

	c := *h
	c.attrs = qualified

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

func (h *prettyTextHandler) writeLevel(buf *bytes.Buffer, level slog.Level) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	style, ok := levelStyle[Level(level)]
	if !ok {
		style = stringStyle
	}

	buf.WriteString(style.Render(strings.ToUpper(Level(level).String())))
}

func (h *prettyTextHandler) writeAttr(
	buf *bytes.Buffer,
	groups []string,
	a slog.Attr,
) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(groups, a)
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, append(groups[:len(groups):len(groups)], a.Key), ga)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	buf.WriteString(keyStyle.Render(key + "="))
	buf.WriteString(renderValue(a.Value))
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64:
		return numberStyle.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return numberStyle.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return numberStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return numberStyle.Render(v.Duration().String())

	case slog.KindTime:
		return timeStyle.Render(v.Time().String())

	default:
		return stringStyle.Render(v.String())
	}
}
