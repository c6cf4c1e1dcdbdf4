// Package internal holds CLI plumbing shared by the streaming-agent
// subcommands: exit codes and error-to-exit-code mapping.
package internal

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitRejected indicates the statement guard refused to execute generated SQL
	ExitRejected = 2
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitDatabaseError indicates a catalog database error
	ExitDatabaseError = 12
)

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for context cancellation
	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	// Check for context deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var agentErr *types.AgentError
	if errors.As(err, &agentErr) {
		cmd.PrintErrln("Error:", agentErr.Error())
		if agentErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", agentErr.Cause)
			}
		}
		return mapAgentErrorToExitCode(agentErr)
	}

	// Generic error
	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapAgentErrorToExitCode maps AgentError codes to CLI exit codes
func mapAgentErrorToExitCode(err *types.AgentError) int {
	switch err.Code {
	case types.SECURITY_REJECTED:
		return ExitRejected
	case types.SQL_TIMEOUT:
		return ExitTimeout
	case types.SQL_CONNECTION_FAILED:
		return ExitDatabaseError
	case types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED,
		types.CONFIG_NOT_FOUND:
		return ExitConfigError
	default:
		return ExitError
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// This is used for panic recovery to determine if stack traces should be shown.
func IsVerbose() bool {
	// Check environment variable
	if os.Getenv("STREAMING_AGENT_VERBOSE") != "" {
		return true
	}

	// Check common verbose flag patterns
	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
