package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func() error
}

// discardClient is used when no GCP project is configured. Messages are
// encoded so callers still see marshal errors, then dropped.
type discardClient struct{}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventMatchRecorded EventType = "match-recorded"
)
