// Package cli implements the interactive terminal client: a REPL that
// drives authentication, profile management and the chat session against
// the application services.
package cli
