package core

// # Error Codes Reference
//
// User-facing messages carry a code users can quote when asking for help.
// Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Filter the export at the source or compress it (gzip, xz)
//	          Patterns: "file too large", "exceeds size limit", "request body too large"
//
//	FILE002 - Invalid CSV: File is not a valid comma-separated file
//	          Action: Check quoting and that no row has more fields than the header
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File could not be read as UTF-8, Latin-1 or Windows-1252
//	          Action: Save the file as UTF-8 and upload it again
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please choose a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Upload a CSV file with a header row
//	          Patterns: "file is empty", "empty file"
//
//	FILE006 - Decompression failed: The compressed upload is damaged
//	          Action: Re-create the archive or upload the plain CSV
//	          Patterns: "decompression failed", "gzip reader", "xz reader"
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset expired: The loaded file is no longer available
//	        Action: Upload the file again
//	        Patterns: "dataset not found"
//
//	DS002 - Unknown format: The requested export format is not supported
//	        Action: Choose CSV, JSON, Excel or Parquet
//	        Patterns: "unknown export format"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many uploads"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones. When a user
// reports ERR000, the technical error is in the server log under the same
// request ID.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Detail  string // Parser message shown for load failures, else empty
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE006)
	// Raised while reading an upload. Decompression comes before the generic
	// CSV pattern since loader errors wrap it.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Filter the export at the source or compress it (gzip, xz)",
			Code:    "FILE001",
		},
	},
	{
		pattern: "exceeds size limit",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Filter the export at the source or compress it (gzip, xz)",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Filter the export at the source or compress it (gzip, xz)",
			Code:    "FILE001",
		},
	},
	{
		pattern: "decompression failed",
		msg: UserMessage{
			Message: "The compressed upload is damaged",
			Action:  "Re-create the archive or upload the plain CSV",
			Code:    "FILE006",
		},
	},
	{
		pattern: "gzip reader",
		msg: UserMessage{
			Message: "The compressed upload is damaged",
			Action:  "Re-create the archive or upload the plain CSV",
			Code:    "FILE006",
		},
	},
	{
		pattern: "xz reader",
		msg: UserMessage{
			Message: "The compressed upload is damaged",
			Action:  "Re-create the archive or upload the plain CSV",
			Code:    "FILE006",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "Error reading file. Check the encoding.",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Error loading file",
			Action:  "Check quoting and that no row has more fields than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please choose a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "file is empty",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Dataset Errors (DS001-DS002)
	// =========================================================================
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "The loaded file is no longer available",
			Action:  "Upload the file again",
			Code:    "DS001",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "The requested export format is not supported",
			Action:  "Choose CSV, JSON, Excel or Parquet",
			Code:    "DS002",
		},
	},

	// =========================================================================
	// Upload Errors (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Load
// failures also carry the parser's own message in Detail.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	msg := defaultMessage
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			msg = ep.msg
			break
		}
	}

	var le *LoadError
	if errors.As(err, &le) {
		msg.Detail = le.Err.Error()
	}
	return msg
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Detail != "" {
		return fmt.Sprintf("%s: %s (Code: %s). %s", msg.Message, msg.Detail, msg.Code, msg.Action)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
