package repositories

import (
	"context"

	"contacts/internal/models"
)

// ContactRepository defines the interface for contact data access.
// Lookups that match nothing are not errors: FindByID returns nil and the
// mutating calls report zero affected rows.
type ContactRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contact, error)
	FindPage(ctx context.Context, limit, offset int) ([]models.Contact, error)
	Insert(ctx context.Context, contact *models.Contact) error
	UpdateByID(ctx context.Context, id uint, changes map[string]interface{}) (int64, error)
	DeleteByID(ctx context.Context, id uint) (int64, error)
	Ping(ctx context.Context) error
}
