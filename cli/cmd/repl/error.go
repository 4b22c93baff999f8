package repl

import "github.com/ardnew/haiku/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds  = pkg.NewError("index out of range")
	ErrEditDeclined = pkg.NewError("decline edit")
	ErrNoBinder     = pkg.NewError("no binder")
	ErrLoadRecord   = pkg.NewError("load record")
)
