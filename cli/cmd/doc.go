// Package cmd implements the rts subcommands.
//
// Every command that executes script code builds its interpreter with
// [newInterpreter], which applies the options, --define bindings and
// --source preludes stored in the command context by [WithSetup].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration script.
	ConfigIdentifier = "config"
)

// Namespace is the name of the namespace scripts run in.
const Namespace = "main"
