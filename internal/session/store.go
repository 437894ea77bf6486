package session

import (
	"boscov/client/internal/domain/models"
)

// Store persists the session record so it survives process restarts.
// Load returns (nil, nil) when no record exists.
type Store interface {
	Load() (*models.Session, error)
	Save(sess *models.Session) error
	Clear() error
}
