package cli

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/haiku/log"
)

// resolve returns a [kong.ConfigurationLoader] reading the mapping under key
// name of a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// Flag names may be written with hyphens or underscores:
//
//	config:
//	  log-level: debug
//	  log_format: json
//	  templates: [site.yaml, partials/]
//	  depth: 2
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug --log-format=json --templates=... --depth=2
//
// Command-line flags override config file values. A file that does not
// decode, or has no mapping under name, configures nothing.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("ignoring configuration file", slog.Any("error", err))
			}

			return config{}, nil
		}

		section, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		conf := make(config, len(section))
		for k, v := range section {
			conf[k] = flagString(v)
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagString converts decoded numbers to the strings Kong parses, including
// the elements of sequences.
func flagString(v any) any {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = flagString(e)
		}

		return out
	default:
		return v
	}
}
