package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/interact-engine/pkg/session"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Storage defines a unified interface for all storage operations:
// session persistence (Redis) and world loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (Redis-backed)
	SaveSession(ctx context.Context, id uuid.UUID, s *session.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// World operations (filesystem-backed)
	ListWorlds(ctx context.Context) (map[string]string, error)
	GetWorld(ctx context.Context, filename string) (*world.MemoryStore, error)
}
