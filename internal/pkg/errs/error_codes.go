/*
Package errs defines the relay's error type and application error codes.

Codes identify specific failures both in server logs and in responses sent
to clients.
*/
package errs

// 1xxx: Request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates a malformed JSON body or payload.
	ErrInvalidJSONFormat = 1002

	// ErrRateLimitExceeded indicates the client exceeded the connect rate limit.
	ErrRateLimitExceeded = 1003
)

// 2xxx: Relay business logic errors
const (
	// ErrUnknownEvent indicates an inbound event name with no registered handler.
	ErrUnknownEvent = 2001

	// ErrSessionNotRegistered indicates an operation that requires a prior
	// user_joined announcement on the session.
	ErrSessionNotRegistered = 2002

	// ErrMessageContentTooLong indicates message content over the size limit.
	ErrMessageContentTooLong = 2101
)

// 5xxx: Internal errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
