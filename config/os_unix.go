//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName strips path separators from an output name so a chunk name
// cannot escape the destination directory. Leading dots are dropped to keep
// output files visible.
func CleanFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case os.PathSeparator, os.PathListSeparator:
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "_bad_file_name_"
	}
	return cleaned
}

// EnableColorOutput reports whether the stream supports colorized output.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
