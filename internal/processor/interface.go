package processor

import (
	"github.com/mauv0809/league-reporter/internal/league"
	"github.com/mauv0809/league-reporter/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	league.Store
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
