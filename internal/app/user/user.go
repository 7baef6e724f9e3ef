/*
Package user contains the identity type attached to a connection.

A user is whatever the client announces at connect time; there is no account
backing it and no uniqueness constraint on names.
*/
package user

// User is the display identity of a chat participant. The name is set by the
// client through user_joined and may change later via change_username.
type User struct {

	// Name is the display name shown to other participants.
	Name string `json:"name"`
}
