//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes, sorted.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// options translates p into pkg/profile options, or nil for an unknown
// mode.
func options(p Profiler) []func(*profile.Profile) {
	fn, ok := mode[p.Mode]
	if !ok {
		return nil
	}

	opts := []func(*profile.Profile){fn, profile.NoShutdownHook}

	if p.Path != "" {
		opts = append(opts, profile.ProfilePath(p.Path))
	}

	if p.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return opts
}

func start(p Profiler) Stopper {
	opts := options(p)
	if opts == nil {
		return ignore{}
	}

	return profile.Start(opts...)
}
