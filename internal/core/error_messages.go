package core

// # Error Codes Reference
//
// Fatal errors abort a run before any output is written. Each one maps to a
// user-facing message with a code that can be quoted in support requests.
// Validation problems are not errors in this sense: they are part of the run's
// outcome and appear in the audit report instead.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Input not found: The data file does not exist
//	          Patterns: "input file not found"
//	FILE002 - Schema not found: The schema file does not exist
//	          Patterns: "schema file not found"
//	FILE003 - Unsupported format: Only .csv and .xlsx are accepted
//	          Patterns: "unsupported file format"
//	FILE004 - Invalid CSV: The file could not be parsed
//	          Patterns: "invalid csv", "invalid spreadsheet"
//	FILE005 - Empty file: The file has no header row
//	          Patterns: "empty file"
//	FILE006 - File too large: The upload exceeds the configured limit
//	          Patterns: "file too large"
//	FILE007 - No file: A multipart upload is missing a part
//	          Patterns: "no file provided"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Invalid schema: The schema document could not be read
//	         Sentinel: schema.ErrInvalidSchema
//	SCH002 - Missing columns: Required schema fields are absent from the data
//	         Sentinel: ErrMissingColumns
//
// # Capacity Errors (CAP001-CAP099)
//
//	CAP001 - sr_no range exhausted: More rows need numbers than the range holds
//	         Sentinel: ErrCapacity
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Busy: Too many concurrent runs
//	         Patterns: "too many concurrent runs"
//	RUN002 - Cancelled: The request was cancelled
//	         Patterns: "context canceled"
//	RUN003 - Timeout: The request timed out
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Run history database unreachable
//	        Patterns: "connection refused"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Sentinels are checked with errors.Is before patterns. Patterns are matched
// case-insensitively with strings.Contains; the first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/florasheet/internal/schema"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{
		target: schema.ErrInvalidSchema,
		msg: UserMessage{
			Message: "The schema document is not valid",
			Action:  "Check the schema's types, enums and patterns",
			Code:    "SCH001",
		},
	},
	{
		target: ErrMissingColumns,
		msg: UserMessage{
			Message: "Required schema fields are missing from the data",
			Action:  "Add the missing columns or relax the schema",
			Code:    "SCH002",
		},
	},
	{
		target: ErrCapacity,
		msg: UserMessage{
			Message: "Too many rows to number within the sr_no range",
			Action:  "Widen SRNO_MIN/SRNO_MAX or split the file",
			Code:    "CAP001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "input file not found",
		msg: UserMessage{
			Message: "The input file was not found",
			Action:  "Check the -input path",
			Code:    "FILE001",
		},
	},
	{
		pattern: "schema file not found",
		msg: UserMessage{
			Message: "The schema file was not found",
			Action:  "Check the -schema path",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Unsupported file type",
			Action:  "Use a .csv or .xlsx file (save legacy .xls workbooks as .xlsx)",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file could not be parsed",
			Action:  "Ensure the file is comma-separated with consistent quoting",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The file could not be parsed",
			Action:  "Re-save the workbook and make sure the first sheet holds the data",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file into smaller parts",
			Code:    "FILE006",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "A required file was not provided",
			Action:  "Attach both the data file and the schema",
			Code:    "FILE007",
		},
	},

	// =========================================================================
	// Run Errors
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "The server is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN003",
		},
	},

	// =========================================================================
	// Database Errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the run history database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels are checked first, then text patterns, then ERR000.
//
// Example:
//
//	_, err := p.Run(ctx, table, "species.csv")
//	msg := MapError(err)
//	// errors.Is(err, ErrCapacity) → msg.Code == "CAP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
