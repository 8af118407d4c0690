package utils

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether we can run the interactive UI: stdout must be a
// terminal and /dev/tty must be openable, which Bubble Tea needs.
func IsTTY() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		return false
	}
	defer tty.Close()

	return true
}
