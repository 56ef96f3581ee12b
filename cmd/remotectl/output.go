package main

import (
	"errors"
	"fmt"
	"io"

	"remote-tools/pkg/protocol"

	"github.com/bytedance/sonic"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var jsonConfig = sonic.ConfigStd

// exitCodeInvalid is returned when a command fails validation, so scripts can
// tell bad input apart from a broken catalog or config (exit 1).
const exitCodeInvalid = 2

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func invalid(err error) error {
	return &exitError{code: exitCodeInvalid, err: err}
}

// validationResult is the JSON form of one validated command.
type validationResult struct {
	Input    string            `json:"input"`
	Valid    bool              `json:"valid"`
	Command  *protocol.Command `json:"command,omitempty"`
	Text     string            `json:"text,omitempty"`
	Argument string            `json:"argument,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func newValidationResult(input string, cmd protocol.Command, err error) validationResult {
	res := validationResult{Input: input}
	if err != nil {
		res.Error = err.Error()
		var cerr *protocol.CommandError
		if errors.As(err, &cerr) {
			res.Argument = cerr.Argument
			res.Error = cerr.Message()
		}
		return res
	}
	res.Valid = true
	res.Command = &cmd
	res.Text = cmd.String()
	return res
}

func writeJSON(w io.Writer, v any) error {
	if err := jsonConfig.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	}
	return fmt.Errorf("invalid output format %q (want %s or %s)", format, outputText, outputJSON)
}
