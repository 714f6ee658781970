package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"contacts/internal/models"
)

// MemoryContactRepository is an in-memory implementation of ContactRepository.
type MemoryContactRepository struct {
	contacts map[uint]models.Contact
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryContactRepository creates a new instance of MemoryContactRepository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{
		contacts: make(map[uint]models.Contact),
		nextID:   1,
	}
}

// FindByID returns a contact by its ID.
func (r *MemoryContactRepository) FindByID(_ context.Context, id uint) (*models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	return &contact, nil
}

// FindPage returns a page of contacts ordered by ID.
func (r *MemoryContactRepository) FindPage(_ context.Context, limit, offset int) ([]models.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.contacts))
	for id := range r.contacts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := []models.Contact{}
	for i := offset; i < len(ids) && len(page) < limit; i++ {
		if i < 0 {
			continue
		}
		page = append(page, r.contacts[ids[i]])
	}
	return page, nil
}

// Insert adds a new contact.
func (r *MemoryContactRepository) Insert(_ context.Context, contact *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	contact.ID = r.nextID
	contact.CreatedAt = now
	contact.UpdatedAt = now
	r.nextID++
	r.contacts[contact.ID] = *contact
	return nil
}

// UpdateByID applies column changes to an existing contact.
func (r *MemoryContactRepository) UpdateByID(_ context.Context, id uint, changes map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contact, ok := r.contacts[id]
	if !ok {
		return 0, nil
	}
	for column, value := range changes {
		switch column {
		case "owner":
			contact.Owner, _ = value.(string)
		case "name":
			contact.Name, _ = value.(string)
		case "last_name":
			contact.LastName, _ = value.(string)
		case "phone_number":
			contact.PhoneNumber, _ = value.(string)
		case "email":
			contact.Email, _ = value.(string)
		case "age":
			contact.Age, _ = value.(int)
		case "avatar":
			contact.Avatar, _ = value.(string)
		case "link_to_website":
			contact.LinkToWebsite, _ = value.(string)
		case "tags":
			contact.Tags, _ = value.(string)
		}
	}
	contact.UpdatedAt = time.Now()
	r.contacts[id] = contact
	return 1, nil
}

// DeleteByID removes a contact by its ID.
func (r *MemoryContactRepository) DeleteByID(_ context.Context, id uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[id]; !ok {
		return 0, nil
	}
	delete(r.contacts, id)
	return 1, nil
}

// Ping always succeeds.
func (r *MemoryContactRepository) Ping(context.Context) error {
	return nil
}
