// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad Op = "load configuration"
	OpLogOpen    Op = "open log file"
	OpBusConnect Op = "connect to session bus"

	// Artwork sources
	OpIndexOpen       Op = "open downloads index"
	OpArtworkServer   Op = "configure artwork server"
	OpIndexLookupPath Op = "locate downloads index"

	// Player
	OpPlayerFollow Op = "follow media player"
	OpPlayerClose  Op = "stop following media player"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
