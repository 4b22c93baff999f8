package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/server"
)

// Serve runs the HTTP expansion service until interrupted.
type Serve struct {
	Addr    string `default:":8080"    help:"Listen address"              short:"a"`
	MaxBody int64  `default:"1048576" help:"Maximum request body in bytes"`
}

// Run executes the serve command.
func (s *Serve) Run(ctx context.Context) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	binder, err := newBinder(ctx)
	if err != nil {
		return err
	}

	srv := server.New(binder,
		server.WithLogger(log.Default()),
		server.WithMaxBody(s.MaxBody),
	)

	log.InfoContext(ctx, "serving",
		slog.String("addr", s.Addr),
		slog.Int("templates", len(binder.Registry().TemplateIDs())))

	return srv.ListenAndServe(ctx, s.Addr)
}
