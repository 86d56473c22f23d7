package cli

import (
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// commandLine renders a resulttool invocation with args quoted for the shell.
func commandLine(args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, AppName)

	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}

	return strings.Join(parts, " ")
}
