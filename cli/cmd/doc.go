// Package cmd implements the haiku subcommands.
//
// Commands receive their shared inputs through the context: the kong
// context ([WithContext]), the record sources ([WithSourceFiles]), the
// template catalogs ([WithCatalogs]), the sanitizer depth ([WithDepth]) and
// the output writer ([WithOutput]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
