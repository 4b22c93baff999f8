package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/net/html"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/pkg"
)

// newBinder returns a binder over the templates of every catalog in ctx,
// logging through the default logger.
func newBinder(ctx context.Context) (*bind.Binder[*html.Node], error) {
	reg := bind.NewRegistry()
	fs := osfs.New("/")

	for _, path := range catalogsFrom(ctx) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, bind.ErrCatalog.Wrap(err).With(slog.String("path", path))
		}

		c, err := bind.LoadCatalog(fs, abs)
		if err != nil {
			return nil, err
		}

		if err := c.Register(reg); err != nil {
			return nil, pkg.WrapError(err).With(slog.String("path", path))
		}

		log.DebugContext(ctx, "catalog registered",
			slog.String("path", path),
			slog.Int("templates", len(c.Templates)),
			slog.Int("conditionals", len(c.Conditionals)))
	}

	opts := []lang.Option{lang.WithLogger(log.Default())}
	if depth, ok := depthFrom(ctx); ok {
		opts = append(opts, lang.WithDepth(depth))
	}

	return bind.New(lang.New[*html.Node](dom.HTML{}, opts...), reg), nil
}
