package recorder

import (
	"context"

	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/notifier"
)

// Store defines the database operations required by the recorder.
type Store interface {
	WithTx(ctx context.Context, fn func(tx ladder.Tx) error) error
}

// Notifier defines the notification operations required by the recorder.
type Notifier interface {
	notifier.Notifier
}
