package team

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Resolve returns the canonical team for players a and b, creating the team record
// on first encounter. Calling it again with the pair in either order is a no-op.
func Resolve(ctx context.Context, store Store, a, b int64) (Key, error) {
	key, err := NewKey(a, b)
	if err != nil {
		return Key{}, err
	}
	created, err := store.EnsureTeam(ctx, key)
	if err != nil {
		return Key{}, fmt.Errorf("failed to ensure team %s: %w", key, err)
	}
	if created {
		log.Info("Created new team", "team", key.String())
	} else {
		log.Debug("Resolved existing team", "team", key.String())
	}
	return key, nil
}
