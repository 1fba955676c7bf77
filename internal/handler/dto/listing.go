package dto

import (
	"time"

	"github.com/listkit/listkit/internal/model"
)

// GenerateRequest represents the request body for a generation.
type GenerateRequest struct {
	Address     string  `json:"address"`
	Price       string  `json:"price,omitempty"`
	Beds        int     `json:"beds,omitempty"`
	Baths       float64 `json:"baths,omitempty"`
	Sqft        int     `json:"sqft,omitempty"`
	Description string  `json:"description,omitempty"`
	Features    string  `json:"features,omitempty"`
}

// GenerationResponse represents one content variant in API responses.
type GenerationResponse struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingResponse represents a listing with its generated content.
type ListingResponse struct {
	ID          string               `json:"id"`
	Address     string               `json:"address"`
	Price       string               `json:"price,omitempty"`
	Beds        int                  `json:"beds"`
	Baths       float64              `json:"baths"`
	Sqft        int                  `json:"sqft"`
	Description string               `json:"description,omitempty"`
	Features    string               `json:"features,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Generations []GenerationResponse `json:"generations"`
}

// ListingListResponse represents the user's listings, newest first.
type ListingListResponse struct {
	Data []ListingResponse `json:"data"`
}

// ToListingResponse converts a Listing model to ListingResponse DTO.
func ToListingResponse(listing *model.Listing) *ListingResponse {
	generations := make([]GenerationResponse, len(listing.Generations))
	for i, gen := range listing.Generations {
		generations[i] = GenerationResponse{
			ID:          gen.ID,
			ContentType: string(gen.ContentType),
			Content:     gen.Content,
			CreatedAt:   gen.CreatedAt,
		}
	}
	return &ListingResponse{
		ID:          listing.ID,
		Address:     listing.Address,
		Price:       listing.Price,
		Beds:        listing.Beds,
		Baths:       listing.Baths,
		Sqft:        listing.Sqft,
		Description: listing.Description,
		Features:    listing.Features,
		CreatedAt:   listing.CreatedAt,
		Generations: generations,
	}
}

// ToListingListResponse converts listings to a ListingListResponse.
func ToListingListResponse(listings []*model.Listing) *ListingListResponse {
	responses := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		responses[i] = *ToListingResponse(listing)
	}
	return &ListingListResponse{Data: responses}
}
