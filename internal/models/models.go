// package models defines the data model for the cinema client
package models

import (
	"context"
	"time"
)

// Model defines the base interface for entities marquee persists locally.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines data access for a persisted [Model].
//
// Deletes are soft: deleted rows are invisible to Get and List.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model
	Get(ctx context.Context, id string) (T, error)                  // Get retrieves a live model by ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing live model
	Delete(ctx context.Context, id string) error                    // Delete soft-deletes a model by ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves live models matching criteria
}
