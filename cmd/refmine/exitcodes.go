package main

// Exit codes shared by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, unreachable database)
	ExitDataError   = 3 // Data error (malformed manifest, unknown format, record not found)
)
