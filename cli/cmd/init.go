package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config namespace undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	out, err := yaml.MarshalContext(ctx,
		map[string]any{ConfigIdentifier: i.buildConfig(ktx)},
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, out, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig collects the current value of every configurable flag.
func (i *Init) buildConfig(ktx *kong.Context) map[string]any {
	conf := make(map[string]any)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx, flag); val != nil {
			conf[flag.Name] = val
		}
	}

	return conf
}

// flagValue returns the configuration value of a flag, or nil if unset.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case []int:
		if len(v) == 0 {
			return nil
		}

		return v

	case []float64:
		if len(v) == 0 {
			return nil
		}

		return v

	case []bool:
		if len(v) == 0 {
			return nil
		}

		return v

	case interface{ String() string }:
		if s := v.String(); s != "" {
			return s
		}

		return nil

	default:
		// Named scalar types such as enum flags.
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.String:
			if rv.String() != "" {
				return rv.String()
			}
		case reflect.Bool:
			return rv.Bool()
		}

		return nil
	}
}
