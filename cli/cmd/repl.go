package cmd

import (
	"context"

	"github.com/ardnew/haiku/cli/cmd/repl"
	"github.com/ardnew/haiku/log"
)

// Repl starts an interactive session expanding expressions and templates
// against the record read from the data sources.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
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

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, binder, record, cacheDir, log.Default())
}
