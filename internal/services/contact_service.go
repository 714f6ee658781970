package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"contacts/internal/models"
	"contacts/internal/repositories"

	"go.uber.org/zap"
)

// Routing keys of the contact lifecycle events.
const (
	EventContactCreated = "contact.created"
	EventContactUpdated = "contact.updated"
	EventContactDeleted = "contact.deleted"
)

// AvatarStorer stores uploaded avatar files and hands back their public URL.
type AvatarStorer interface {
	Store(fh *multipart.FileHeader, origin string) (string, error)
	Remove(url string) error
}

// EventPublisher publishes a JSON message under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Upload is an avatar file that came with a request, together with the
// scheme and host the request was addressed to.
type Upload struct {
	File   *multipart.FileHeader
	Origin string
}

// ContactEvent is the message body published for lifecycle events.
type ContactEvent struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Contact    *models.Contact `json:"contact"`
}

// ContactService handles the business logic for contacts.
type ContactService struct {
	repo      repositories.ContactRepository
	avatars   AvatarStorer
	publisher EventPublisher
	log       *zap.Logger
}

// NewContactService creates a new ContactService. publisher may be nil, in
// which case no events are published.
func NewContactService(repo repositories.ContactRepository, avatars AvatarStorer, publisher EventPublisher, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{
		repo:      repo,
		avatars:   avatars,
		publisher: publisher,
		log:       log,
	}
}

// Create builds a contact owned by owner from attrs and persists it. An
// uploaded avatar replaces the avatar attribute.
func (s *ContactService) Create(ctx context.Context, owner string, attrs models.ContactAttributes, avatar *Upload) (*models.Contact, error) {
	contact := attrs.Build(owner)

	stored, err := s.storeAvatar(avatar)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		contact.Avatar = stored
	}

	if err := s.repo.Insert(ctx, contact); err != nil {
		s.discardAvatar(stored)
		return nil, err
	}

	s.publish(EventContactCreated, contact)
	return contact, nil
}

// Get returns the contact with that ID, or nil when there is none.
func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns the given 1-based page of contacts.
func (s *ContactService) List(ctx context.Context, limit, page int) ([]models.Contact, error) {
	return s.repo.FindPage(ctx, limit, (page-1)*limit)
}

// Update applies attrs to the contact with that ID and returns the contact as
// stored afterwards, or nil when there is none.
func (s *ContactService) Update(ctx context.Context, id uint, owner string, attrs models.ContactAttributes, avatar *Upload) (*models.Contact, error) {
	stored, err := s.storeAvatar(avatar)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		attrs.Avatar = &stored
	}

	affected, err := s.repo.UpdateByID(ctx, id, attrs.Changes(owner))
	if err != nil {
		s.discardAvatar(stored)
		return nil, err
	}

	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected > 0 && contact != nil {
		s.publish(EventContactUpdated, contact)
	}
	return contact, nil
}

// Delete removes the contact with that ID and returns it as it was before the
// deletion, or nil when there was none.
func (s *ContactService) Delete(ctx context.Context, id uint) (*models.Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected > 0 && contact != nil {
		s.publish(EventContactDeleted, contact)
	}
	return contact, nil
}

// Ping reports whether storage is reachable.
func (s *ContactService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ContactService) storeAvatar(avatar *Upload) (string, error) {
	if avatar == nil || avatar.File == nil {
		return "", nil
	}
	if s.avatars == nil {
		return "", fmt.Errorf("avatar uploads are not configured")
	}
	return s.avatars.Store(avatar.File, avatar.Origin)
}

// discardAvatar removes an avatar stored for a write that then failed.
func (s *ContactService) discardAvatar(url string) {
	if url == "" {
		return
	}
	if err := s.avatars.Remove(url); err != nil {
		s.log.Warn("failed to remove orphaned avatar", zap.String("avatar", url), zap.Error(err))
	}
}

func (s *ContactService) publish(eventType string, contact *models.Contact) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ContactEvent{Type: eventType, OccurredAt: time.Now().UTC(), Contact: contact})
	if err != nil {
		s.log.Error("failed to marshal contact event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		s.log.Warn("failed to publish contact event",
			zap.String("type", eventType),
			zap.Uint("contact_id", contact.ID),
			zap.Error(err))
		return
	}
	s.log.Debug("published contact event", zap.String("type", eventType), zap.Uint("contact_id", contact.ID))
}
