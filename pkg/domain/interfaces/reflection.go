package interfaces

import (
	"context"

	"github.com/kagami-lab/kagami/pkg/domain/model"
)

// ReflectionRepository defines the interface for reflection persistence
type ReflectionRepository interface {
	// Initialize prepares the backing storage. Safe to call multiple times.
	Initialize(ctx context.Context) error

	// Add stores a new reflection. ID and Timestamp are assigned by the
	// store; values on the input are ignored.
	Add(ctx context.Context, entry *model.Reflection) (*model.Reflection, error)

	// Get retrieves a reflection by ID
	Get(ctx context.Context, id model.ReflectionID) (*model.Reflection, error)

	// Update applies a partial update and refreshes the timestamp
	Update(ctx context.Context, id model.ReflectionID, patch model.ReflectionPatch) (*model.Reflection, error)

	// Delete removes a reflection by ID
	Delete(ctx context.Context, id model.ReflectionID) error

	// List returns all reflections in insertion order
	List(ctx context.Context) ([]*model.Reflection, error)

	// Search returns reflections matching all supplied criteria
	Search(ctx context.Context, query model.ReflectionQuery) ([]*model.Reflection, error)
}
