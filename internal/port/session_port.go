package port

import (
	"context"

	"github.com/nikolayk812/herbalshop/internal/domain"
)

type SessionStore interface {
	// Load returns an empty session when nothing is stored under id.
	Load(ctx context.Context, id string) (*domain.Session, error)
	// Save is a no-op for sessions that were not modified.
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}
