// Package profile provides optional runtime profiling for haiku.
//
// Profiling is built on [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof -o haiku .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// The haiku command exposes the same settings as flags:
//
//	haiku --pprof-mode=heap --pprof-dir=./profiles serve
//
// The default output directory is the pprof directory under the haiku cache
// directory, for example $XDG_CACHE_HOME/haiku/pprof.
//
// Profiles are read with go tool pprof:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// When built with the tag, the package also imports [net/http/pprof], which
// registers its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
