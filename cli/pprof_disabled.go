//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"
)

// pprofConfig has no flags without the pprof build tag.
type pprofConfig struct{}

func (pprofConfig) vars() kong.Vars { return nil }

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling options"}
}

func (pprofConfig) start(context.Context) func() { return func() {} }
