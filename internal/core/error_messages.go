package core

// # Error Codes Reference
//
// Every error surfaced to a client carries a short code that can be quoted
// in a support request. Codes are grouped by category:
//
//	PROC001 - Processor not found            (ErrNotFound)
//	VAL001  - Invalid record                 (*ValidationError)
//	VAL002  - Missing Product column         ("missing required column")
//	FILE001 - File too large                 ("file too large")
//	FILE002 - Invalid CSV                    ("invalid csv")
//	FILE003 - Empty file                     ("empty file")
//	FILE004 - No file                        ("no file provided")
//	FILE005 - Upload slots exhausted         ("too many concurrent uploads")
//	DB001   - Database unavailable           (*TransientError)
//	DB002   - Timeout                        ("timeout", "deadline exceeded")
//	RATE001 - Rate limited                   ("rate limit")
//	AUTH001 - Missing API key                ("missing api key")
//	AUTH002 - Invalid API key                ("invalid api key")
//	REQ001  - Unknown route                  ("route not found")
//	REQ002  - Wrong method                   ("method not allowed")
//	REQ003  - Bad query or path parameter    ("invalid parameter")
//	ERR000  - Unknown error
//
// Substring patterns are matched case-insensitively first, first match wins,
// so specific file problems keep their own codes. Typed errors are
// classified after that.

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
}

var (
	msgNotFound = UserMessage{
		Message: "Processor not found",
		Action:  "Check the processor name or id",
		Code:    "PROC001",
	}
	msgInvalid = UserMessage{
		Message: "The record could not be stored",
		Action:  "Fix the field named in the error and resend the file",
		Code:    "VAL001",
	}
	msgUnavailable = UserMessage{
		Message: "The database is temporarily unavailable",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}
	msgUnknown = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are checked in order. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "The CSV file has no Product column",
			Action:  "Use the standard header row starting with Product",
			Code:    "VAL002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header and data rows",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Send the CSV as the request body or as form field \"file\"",
			Code:    "FILE004",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "The server is busy with other uploads",
			Action:  "Please retry the upload shortly",
			Code:    "FILE005",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "Authentication required",
			Action:  "Send a valid key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The API key is not valid",
			Action:  "Check the X-API-Key header",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "route not found",
		msg: UserMessage{
			Message: "Not Found",
			Action:  "Check the request path",
			Code:    "REQ001",
		},
	},
	{
		pattern: "method not allowed",
		msg: UserMessage{
			Message: "Method Not Allowed",
			Action:  "Check the HTTP method for this path",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "A request parameter is not valid",
			Action:  "Use non-negative integers for skip, limit and id",
			Code:    "REQ003",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case IsValidation(err):
		return msgInvalid
	case IsTransient(err):
		return msgUnavailable
	}

	return msgUnknown
}

// FormatUserError returns "Message (Code: X). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
