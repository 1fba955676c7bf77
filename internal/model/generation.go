package model

import "time"

// ContentType is one of the six fixed marketing-output categories.
type ContentType string

const (
	ContentTypeInstagram ContentType = "instagram"
	ContentTypeFacebook  ContentType = "facebook"
	ContentTypeEmail     ContentType = "email"
	ContentTypeOpenHouse ContentType = "openhouse"
	ContentTypeSMS       ContentType = "sms"
	ContentTypeVideo     ContentType = "video"
)

// ContentTypes returns the six content types in their fixed output order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentTypeInstagram,
		ContentTypeFacebook,
		ContentTypeEmail,
		ContentTypeOpenHouse,
		ContentTypeSMS,
		ContentTypeVideo,
	}
}

// IsValidContentType checks if ct is one of the six fixed values.
func IsValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeInstagram, ContentTypeFacebook, ContentTypeEmail,
		ContentTypeOpenHouse, ContentTypeSMS, ContentTypeVideo:
		return true
	}
	return false
}

// Generation is one piece of generated marketing copy for a listing.
// Created once per content type per generation request, never updated.
type Generation struct {
	ID          string      `json:"id"`
	ListingID   string      `json:"listing_id"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
}
