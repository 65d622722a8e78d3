package pubsub

import (
	"errors"
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// noop stands in when no Google Cloud project is configured.
type noop struct{}

// ErrDisabled is returned by the client built without a project.
var ErrDisabled = errors.New("pubsub is disabled")

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventGamesChanged EventType = "games-changed"
)

// ChangeKind says what happened to the game corpus.
type ChangeKind string

const (
	ChangeSubmitted ChangeKind = "submitted"
	ChangeEdited    ChangeKind = "edited"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeMalus     ChangeKind = "malus"
)

// GamesChanged is published after every mutation of the game corpus.
type GamesChanged struct {
	Kind     ChangeKind `msgpack:"kind"`
	Matchday int        `msgpack:"matchday"`
	Title    string     `msgpack:"title"`
	GameID   string     `msgpack:"game_id"`
	Warnings []string   `msgpack:"warnings"`
	Detail   string     `msgpack:"detail"`
	At       time.Time  `msgpack:"at"`
}
