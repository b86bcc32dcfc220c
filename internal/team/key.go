package team

import (
	"errors"
	"fmt"
)

var ErrSamePlayer = errors.New("a player cannot team with themself")

// Key is the canonical identity of a team: the two player ids, lower first.
// The same unordered pair always yields the same Key.
type Key struct {
	Low  int64 `json:"player1_id" msgpack:"player1_id"`
	High int64 `json:"player2_id" msgpack:"player2_id"`
}

// NewKey orders a and b into a Key.
func NewKey(a, b int64) (Key, error) {
	if a == b {
		return Key{}, fmt.Errorf("%w: player %d", ErrSamePlayer, a)
	}
	if a > b {
		a, b = b, a
	}
	return Key{Low: a, High: b}, nil
}

// String renders the key for logs and URLs. It is not used as a storage key.
func (k Key) String() string {
	return fmt.Sprintf("%d&%d", k.Low, k.High)
}
