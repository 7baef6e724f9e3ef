/*
Package errs defines the relay's error type and application error codes.

errorMap pairs every code with its client-safe message and HTTP status.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status defaults to 200 OK at construction time.
var errorMap = map[int]CustomError{
	// 1xxx: Request handling errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Relay business logic errors
	ErrUnknownEvent:          {Code: ErrUnknownEvent, Message: "Unsupported event."},
	ErrSessionNotRegistered:  {Code: ErrSessionNotRegistered, Message: "Announce your identity first."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},

	// 5xxx: Internal errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
