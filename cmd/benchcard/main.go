package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/benchcard/benchcard/internal/orchestration"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Chart written or input valid
	ExitInputError = 1 // The input document is malformed or invalid
	ExitError      = 2 // Configuration or runtime error
)

// InputError attributes a pipeline failure to the input file it came from.
type InputError struct {
	File string
	Err  error
}

func (e *InputError) Error() string {
	return formatInputError(e.File, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) || orchestration.IsInputError(err) {
		return ExitInputError
	}
	return ExitError
}
