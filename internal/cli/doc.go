// Package cli parses the demo binary's command-line arguments, validates
// them, and builds its logger. It translates flags into the application's
// configuration and process-level concerns like exit codes.
package cli
