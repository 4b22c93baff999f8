package cmd

import "github.com/ardnew/haiku/pkg"

var (
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrJSONMarshal = pkg.NewError("marshal JSON")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrReadRecord  = pkg.NewError("read record")
	ErrReadView    = pkg.NewError("read view")
	ErrFormat      = pkg.NewError("unsupported output format")
)
