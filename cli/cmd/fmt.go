package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/dom"
)

// Fmt reads a view, parses it, and writes it back in the chosen format.
type Fmt struct {
	HTML HTMLFmt `cmd:"" default:"withargs" help:"Format as normalized HTML (default)."`
	JSON JSONFmt `cmd:""                    help:"Format as a JSON node dump."`
	YAML YAMLFmt `cmd:""                    help:"Format as a YAML node dump."`
}

// HTMLFmt formats a view as normalized markup.
type HTMLFmt struct {
	Source string `arg:"" default:"-" help:"Source view file or '-' for default stdin." name:"source"`
}

// Run executes the fmt html command.
func (f *HTMLFmt) Run(ctx context.Context) error {
	return formatView(ctx, f.Source, FormatHTML, 0)
}

// JSONFmt formats a view as a JSON node dump.
type JSONFmt struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source view file or '-' for default stdin." name:"source"`
}

// Run executes the fmt json command.
func (j *JSONFmt) Run(ctx context.Context) error {
	return formatView(ctx, j.Source, FormatJSON, j.Indent)
}

// YAMLFmt formats a view as a YAML node dump.
type YAMLFmt struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source view file or '-' for default stdin." name:"source"`
}

// Run executes the fmt yaml command.
func (y *YAMLFmt) Run(ctx context.Context) error {
	return formatView(ctx, y.Source, FormatYAML, y.Indent)
}

func formatView(ctx context.Context, source, format string, indent int) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := readView(source)
	if err != nil {
		return err
	}

	return writeTree(ctx, outputFrom(ctx), root, format, indent)
}

// readView parses the view markup in the named file, or stdin for "-".
func readView(source string) (*html.Node, error) {
	file := os.Stdin

	if source != stdinSource {
		var err error

		file, err = os.Open(source)
		if err != nil {
			return nil, ErrReadView.Wrap(err).With(slog.String("view", source))
		}
		defer file.Close()
	}

	ra := readahead.NewReader(file)
	defer ra.Close()

	root, err := dom.Parse(ra)
	if err != nil {
		return nil, ErrReadView.Wrap(err).With(slog.String("view", source))
	}

	return root, nil
}
