package cmd

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/ardnew/haiku/log"
)

// Expand expands an expression, or a registered template, against the
// record read from the data sources.
type Expand struct {
	Expression string `arg:""                               help:"Expression to expand, or a template id with --template" name:"expression"`
	Template   bool   `                                     help:"Treat the argument as a registered template id"                           short:"T"`
	Bind       bool   `                                     help:"Bind the expansion to the record"                                         short:"b"`
	Format     string `default:"html" enum:"html,yaml,json" help:"Output format"                                                            short:"o"`
	Indent     int    `default:"2"                          help:"Indent width for yaml and json output"                                    short:"i"`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	record, err := loadRecord(ctx)
	if err != nil {
		return err
	}

	binder, err := newBinder(ctx)
	if err != nil {
		return err
	}

	var root *html.Node

	if e.Template {
		root, err = binder.ExpandTemplate(ctx, e.Expression, record)
	} else {
		root, err = binder.Expander().Expand(ctx, e.Expression, record)
	}

	if err != nil {
		return err
	}

	if e.Bind {
		if err := binder.Bind(ctx, root, record); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "expanded",
		slog.String("expression", e.Expression),
		slog.Bool("template", e.Template),
		slog.Bool("bind", e.Bind))

	return writeTree(ctx, outputFrom(ctx), root, e.Format, e.Indent)
}
