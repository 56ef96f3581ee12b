package lib

import (
	"errors"
	"fmt"
	"os"
)

// ExitCoder is implemented by errors that choose the process exit status.
type ExitCoder interface {
	ExitCode() int
}

// Exit prints the error and exits the program with the code carried by err,
// or 1 when it carries none.
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitCode(err))
}

// ExitCode returns the exit status for err: 0 for nil, the code of the first
// ExitCoder in the chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}
