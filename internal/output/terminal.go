package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is a terminal, including Cygwin and MSYS
// pseudo terminals.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShouldDisableColor decides whether output to w is written without color.
// Color is off when requested, when NO_COLOR is set, or when w is not a
// terminal.
func ShouldDisableColor(noColor bool, w io.Writer) bool {
	if noColor {
		return true
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return !IsTerminal(w)
}
