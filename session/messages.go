package session

import (
	"errors"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/table"
)

// User-facing texts shared by the CLI, TUI and HTTP surfaces.
const (
	MsgApplied     = "Transformation applied successfully!"
	MsgReset       = "Data has been reset to its original state."
	MsgNoLog       = "No transformations have been applied yet."
	MsgEmpty       = "Please enter a command."
	MsgNoCommand   = "Could not generate a command."
	MsgNoDataset   = "Upload a CSV file to get started."
	msgErrorPrefix = "Oops! An error occurred: "
	msgLoadPrefix  = "Could not read the file: "
)

// HowItWorks is the short help shown before a file is loaded.
const HowItWorks = `1. Upload: load any CSV or XLSX file.
2. Command: type a data cleaning instruction in plain English.
3. Apply: the instruction is translated into a statement and executed.
4. View & Download: inspect the result and download your new data.`

// Message converts an operation error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var execErr *executor.ExecutionError
	var parseErr *table.ParseError
	switch {
	case errors.Is(err, ErrEmptyInstruction):
		return MsgEmpty
	case errors.Is(err, ErrNoCommand):
		return MsgNoCommand
	case errors.Is(err, ErrNoDataset):
		return MsgNoDataset
	case errors.As(err, &execErr):
		return msgErrorPrefix + execErr.Error()
	case errors.As(err, &parseErr):
		return msgLoadPrefix + parseErr.Error()
	}
	return msgErrorPrefix + err.Error()
}

// IsWarning reports whether err is a recoverable input problem rather than
// a failure, so surfaces can style it accordingly.
func IsWarning(err error) bool {
	return errors.Is(err, ErrEmptyInstruction) ||
		errors.Is(err, ErrNoCommand) ||
		errors.Is(err, ErrNoDataset)
}
