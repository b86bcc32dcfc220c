package team

import "context"

// Store is the persistence the resolver needs. EnsureTeam creates the team with
// zero wins and losses if it does not exist yet and reports whether it did so.
type Store interface {
	EnsureTeam(ctx context.Context, key Key) (bool, error)
}
