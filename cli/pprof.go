//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/profile"
)

// pprofConfig selects a profile to record for the duration of a command.
type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModes}" help:"Profile to record (${enum})" short:"p"`
	Dir  string `default:"${pprofDir}" help:"Directory receiving profiles"                      type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModes": strings.Join(profile.Modes(), ","),
		"pprofDir":   filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling options"}
}

// start records the selected profile until the returned function is
// called. Without a mode both are no-ops.
func (f pprofConfig) start(ctx context.Context) func() {
	p := profile.Profiler{Mode: f.Mode, Path: f.Dir, Quiet: true}
	if p.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", p.Mode), slog.String("dir", p.Path)}

	log.DebugContext(ctx, "profiling", attrs...)

	s := p.Start()

	return func() {
		s.Stop()
		log.DebugContext(ctx, "profile written", attrs...)
	}
}
