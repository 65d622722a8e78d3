package league

import (
	"database/sql"
	"errors"
	"sync"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrAmbiguousGame = errors.New("more than one game matches")
	ErrUnknownTeam   = errors.New("team is not registered")
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
