// Package cli contains the command line interface for haiku.
//
// # Usage
//
//	haiku [flags] <command> [args]
//
// Commands:
//
//	expand     expand an expression, or a template with -T (default)
//	bind       bind a view to the data record
//	templates  list the templates of the catalogs
//	fmt        normalize a view as html, json or yaml
//	serve      serve expansion and binding over HTTP
//	repl       interactive expansion
//	init       write a config file from the current flags
//
// The data record is read from every -d file, in order, with "-" naming
// stdin. Mapping documents are merged key by key. Templates are read from
// every -t catalog file or directory.
//
// # Configuration
//
// Flags may be given defaults in the YAML file config.yaml under the haiku
// config directory, for example $XDG_CONFIG_HOME/haiku/config.yaml:
//
//	config:
//	  log-level: debug
//	  templates: [/srv/site/catalog.yaml]
//	  depth: 2
//
// Keys name flags with hyphens or underscores. Command-line flags override
// the file. "haiku init" writes the file from the current flag values.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: include caller information
//   - --log-pretty: colorized text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o haiku .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/haiku/pprof)
//
// # Examples
//
//	haiku -d user.yaml 'div.card>h2{$name;}+p{$bio;}'
//	haiku -t catalog.yaml -d user.yaml expand -T -b card
//	haiku -t views/ -d page.json bind page.html
//	haiku -t views/ serve --addr :8080
package cli
