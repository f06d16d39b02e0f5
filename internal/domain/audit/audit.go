// Package audit records admin actions as an append-only log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded admin action.
type Entry struct {
	ID        string
	Actor     string
	Action    string
	Entity    string
	EntityID  string
	Detail    string
	CreatedAt time.Time
}

// Repository appends and reads audit entries.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	// List returns the newest entries first, at most limit of them.
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Record builds and appends an entry for the given actor and action.
func Record(ctx context.Context, repo Repository, actor, action, entity, entityID, detail string) error {
	return repo.Append(ctx, Entry{
		ID:       uuid.New().String(),
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
}
