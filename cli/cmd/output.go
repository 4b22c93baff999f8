package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/dom"
)

// Output formats of a node tree.
const (
	FormatHTML = "html"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// writeTree writes root to w as markup or as its structural dump.
func writeTree(
	ctx context.Context,
	w io.Writer,
	root *html.Node,
	format string,
	indent int,
) error {
	switch strings.ToLower(format) {
	case "", FormatHTML:
		if err := (dom.HTML{}).Render(w, root); err != nil {
			return err
		}

		_, err := io.WriteString(w, "\n")

		return err

	case FormatYAML:
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		out, err := yaml.MarshalContext(ctx, dom.DumpNode(root), opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(out)

		return err

	case FormatJSON:
		var (
			out []byte
			err error
		)

		if indent > 0 {
			out, err = json.MarshalIndent(dom.DumpNode(root), "", strings.Repeat(" ", indent))
		} else {
			out, err = json.Marshal(dom.DumpNode(root))
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = w.Write(append(out, '\n'))

		return err

	default:
		return ErrFormat.With(slog.String("format", format))
	}
}
