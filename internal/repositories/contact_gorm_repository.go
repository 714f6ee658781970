package repositories

import (
	"context"
	"errors"
	"fmt"

	"contacts/internal/models"

	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

// FindByID retrieves a single contact, or nil if there is none with that ID.
func (r *GORMContactRepository) FindByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact by ID %d: %w", id, err)
	}
	return &contact, nil
}

// FindPage retrieves at most limit contacts starting at offset, in insertion order.
func (r *GORMContactRepository) FindPage(ctx context.Context, limit, offset int) ([]models.Contact, error) {
	contacts := []models.Contact{}
	err := r.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Insert creates a new contact. The database assigns the ID and GORM sets
// both timestamps.
func (r *GORMContactRepository) Insert(ctx context.Context, contact *models.Contact) error {
	contact.ID = 0
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// UpdateByID applies the given column changes to the contact with that ID.
func (r *GORMContactRepository) UpdateByID(ctx context.Context, id uint, changes map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update contact %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByID removes the contact with that ID.
func (r *GORMContactRepository) DeleteByID(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete contact %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// Ping checks that the underlying connection pool can reach the database.
func (r *GORMContactRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
