/*
Package relay contains the core logic of the chat relay.

This file defines the presence registry: the mutex-guarded mapping from
session identifier to announced user. The registry performs no I/O; presence
broadcasts that follow a mutation are the hub's job.
*/
package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"gorelay/internal/app/user"
	"gorelay/internal/pkg/logx"
)

// Registry tracks the users announced on currently connected sessions.
// Entries appear on user_joined and disappear on disconnect; the scope is
// one server process lifetime.
type Registry struct {
	// mu protects access to the users map.
	mu sync.RWMutex

	// users maps session identifier to the announced user.
	users map[string]*user.User

	// structured logger with registry context.
	logger zerolog.Logger
}

// NewRegistry constructs an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]*user.User),
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Register records the user announced on the given session, overwriting any
// previous announcement for that session.
func (reg *Registry) Register(sessionID string, u user.User) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.users[sessionID] = &u

	reg.logger.Info().
		Str("session_id", sessionID).
		Str("user_name", u.Name).
		Int("total_users", len(reg.users)).
		Msg("User registered.")
}

// Unregister removes and returns the user of the given session. A session
// that never announced itself (disconnect before user_joined) yields
// ok == false and only a log entry, never a failure.
func (reg *Registry) Unregister(sessionID string) (user.User, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	u, ok := reg.users[sessionID]
	if !ok {
		reg.logger.Warn().
			Str("session_id", sessionID).
			Msg("Unregister for session with no announced user. Skipping.")
		return user.User{}, false
	}

	delete(reg.users, sessionID)

	reg.logger.Info().
		Str("session_id", sessionID).
		Str("user_name", u.Name).
		Int("total_users", len(reg.users)).
		Msg("User unregistered.")

	return *u, true
}

// Rename changes the stored user's name in place. A rename for an unknown
// session is a logged no-op.
func (reg *Registry) Rename(sessionID, newName string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	u, ok := reg.users[sessionID]
	if !ok {
		reg.logger.Warn().
			Str("session_id", sessionID).
			Str("new_name", newName).
			Msg("Rename for session with no announced user. Skipping.")
		return
	}

	reg.logger.Info().
		Str("session_id", sessionID).
		Str("old_name", u.Name).
		Str("new_name", newName).
		Msg("User renamed.")

	u.Name = newName
}

// Lookup returns the user announced on the given session, if any.
func (reg *Registry) Lookup(sessionID string) (user.User, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.users[sessionID]
	if !ok {
		return user.User{}, false
	}
	return *u, true
}

// Snapshot returns a point-in-time copy of all announced users keyed by
// session identifier, used to publish the users_online presence list.
func (reg *Registry) Snapshot() map[string]user.User {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	snapshot := make(map[string]user.User, len(reg.users))
	for id, u := range reg.users {
		snapshot[id] = *u
	}
	return snapshot
}

// Count returns the number of announced users.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.users)
}
