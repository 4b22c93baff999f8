package profile

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unknown mode profiles nothing.
	Mode string
	// Path is the output directory; empty uses the current directory.
	Path string
	// Quiet suppresses the profiler's own log lines.
	Quiet bool
}

// Start begins profiling and returns a [Stopper] ending it. Without the
// pprof build tag, or with an empty Mode, Start returns a no-op Stopper.
// Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
