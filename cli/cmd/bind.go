package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/haiku/log"
)

// Bind fills the data-binding slots of a view with the record read from
// the data sources.
type Bind struct {
	Format string `default:"html" enum:"html,yaml,json" help:"Output format"                          short:"o"`
	Indent int    `default:"2"                          help:"Indent width for yaml and json output" short:"i"`

	View string `arg:"" default:"-" help:"View markup file or '-' for stdin." name:"view"`
}

// Run executes the bind command.
func (b *Bind) Run(ctx context.Context) (err error) {
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

	view, err := readView(b.View)
	if err != nil {
		return err
	}

	if err := binder.Bind(ctx, view, record); err != nil {
		return err
	}

	log.DebugContext(ctx, "bound view", slog.String("view", b.View))

	return writeTree(ctx, outputFrom(ctx), view, b.Format, b.Indent)
}
