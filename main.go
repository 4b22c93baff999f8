package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/haiku/cli"
	"github.com/ardnew/haiku/log"
)

func main() {
	if err := cli.Run(context.Background(), os.Exit, os.Args[1:]...); err != nil {
		// slog uses the error's LogValue for its attributes
		log.Error("haiku failed", slog.Any("error", err))
		os.Exit(1)
	}
}
