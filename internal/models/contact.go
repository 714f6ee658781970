package models

import (
	"strings"
	"time"
)

// Contact represents a person's contact details.
type Contact struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	LastName      string    `json:"lastName"`
	PhoneNumber   string    `json:"phoneNumber"`
	Email         string    `json:"email"`
	Age           int       `json:"age"`
	Avatar        string    `json:"avatar"`
	LinkToWebsite string    `json:"linkToWebsite"`
	Tags          string    `json:"tags"` // comma-separated
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of the naming strategy.
func (Contact) TableName() string {
	return "contacts"
}

// TagList returns the non-empty, trimmed entries of the Tags field.
func (c Contact) TagList() []string {
	return SplitTags(c.Tags)
}

// SplitTags splits a flattened tag string into its entries.
func SplitTags(tags string) []string {
	out := []string{}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags flattens a tag list into the stored comma-separated form.
func JoinTags(tags []string) string {
	return strings.Join(SplitTags(strings.Join(tags, ",")), ",")
}

// ContactAttributes is the partial attribute set accepted on create and update.
// A nil field means the caller did not send it.
type ContactAttributes struct {
	Name          *string `json:"name" form:"name"`
	LastName      *string `json:"lastName" form:"lastName"`
	PhoneNumber   *string `json:"phoneNumber" form:"phoneNumber"`
	Email         *string `json:"email" form:"email"`
	Age           *int    `json:"age" form:"age"`
	Avatar        *string `json:"avatar" form:"avatar"`
	LinkToWebsite *string `json:"linkToWebsite" form:"linkToWebsite"`
	Tags          *string `json:"tags" form:"tags"`
}

// Build creates a new, unsaved Contact from the attributes that were supplied.
func (a ContactAttributes) Build(owner string) *Contact {
	c := &Contact{Owner: owner}
	if a.Name != nil {
		c.Name = *a.Name
	}
	if a.LastName != nil {
		c.LastName = *a.LastName
	}
	if a.PhoneNumber != nil {
		c.PhoneNumber = *a.PhoneNumber
	}
	if a.Email != nil {
		c.Email = *a.Email
	}
	if a.Age != nil {
		c.Age = *a.Age
	}
	if a.Avatar != nil {
		c.Avatar = *a.Avatar
	}
	if a.LinkToWebsite != nil {
		c.LinkToWebsite = *a.LinkToWebsite
	}
	if a.Tags != nil {
		c.Tags = *a.Tags
	}
	return c
}

// Changes returns the supplied attributes keyed by column name, ready for a
// partial update.
func (a ContactAttributes) Changes(owner string) map[string]interface{} {
	changes := map[string]interface{}{"owner": owner}
	if a.Name != nil {
		changes["name"] = *a.Name
	}
	if a.LastName != nil {
		changes["last_name"] = *a.LastName
	}
	if a.PhoneNumber != nil {
		changes["phone_number"] = *a.PhoneNumber
	}
	if a.Email != nil {
		changes["email"] = *a.Email
	}
	if a.Age != nil {
		changes["age"] = *a.Age
	}
	if a.Avatar != nil {
		changes["avatar"] = *a.Avatar
	}
	if a.LinkToWebsite != nil {
		changes["link_to_website"] = *a.LinkToWebsite
	}
	if a.Tags != nil {
		changes["tags"] = *a.Tags
	}
	return changes
}
