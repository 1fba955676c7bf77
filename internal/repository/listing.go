package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/listkit/listkit/internal/model"
)

// ErrListingNotFound is returned when a listing does not exist.
var ErrListingNotFound = errors.New("listing not found")

// CreateListing inserts a new listing.
func (r *Repository) CreateListing(ctx context.Context, listing *model.Listing) error {
	query := `
		INSERT INTO listings (id, user_id, address, price, beds, baths, sqft, description, features, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.UserID,
		listing.Address,
		listing.Price,
		listing.Beds,
		listing.Baths,
		listing.Sqft,
		listing.Description,
		listing.Features,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// CountListingsByUserID returns how many listings a user has created.
// This doubles as the derived "credits used" count for entitlement checks.
func (r *Repository) CountListingsByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}

	return count, nil
}

// GetListingByID retrieves one listing with its generations.
func (r *Repository) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `
		SELECT id, user_id, address, price, beds, baths, sqft, description, features, created_at
		FROM listings
		WHERE id = $1
	`

	var listing model.Listing
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.UserID,
		&listing.Address,
		&listing.Price,
		&listing.Beds,
		&listing.Baths,
		&listing.Sqft,
		&listing.Description,
		&listing.Features,
		&listing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	generations, err := r.getGenerationsForListings(ctx, []string{listing.ID})
	if err != nil {
		return nil, err
	}
	listing.Generations = generations[listing.ID]

	return &listing, nil
}

// ListListingsByUserID returns all listings owned by a user, newest first,
// each with its nested generations.
func (r *Repository) ListListingsByUserID(ctx context.Context, userID string) ([]*model.Listing, error) {
	query := `
		SELECT id, user_id, address, price, beds, baths, sqft, description, features, created_at
		FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*model.Listing
	var ids []string
	for rows.Next() {
		var listing model.Listing
		err := rows.Scan(
			&listing.ID,
			&listing.UserID,
			&listing.Address,
			&listing.Price,
			&listing.Beds,
			&listing.Baths,
			&listing.Sqft,
			&listing.Description,
			&listing.Features,
			&listing.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, &listing)
		ids = append(ids, listing.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	if len(ids) == 0 {
		return listings, nil
	}

	generations, err := r.getGenerationsForListings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, listing := range listings {
		listing.Generations = generations[listing.ID]
	}

	return listings, nil
}

// CreateGenerations inserts all generation rows for a listing in one batch.
// Called once per generation request, after every slot has settled.
func (r *Repository) CreateGenerations(ctx context.Context, generations []*model.Generation) error {
	if len(generations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO generations (id, listing_id, content_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, gen := range generations {
		batch.Queue(query,
			gen.ID,
			gen.ListingID,
			gen.ContentType,
			gen.Content,
			gen.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(generations); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert generation %d: %w", i, err)
		}
	}

	return nil
}

// getGenerationsForListings loads generations for a set of listings, grouped
// by listing id.
func (r *Repository) getGenerationsForListings(ctx context.Context, listingIDs []string) (map[string][]*model.Generation, error) {
	query := `
		SELECT id, listing_id, content_type, content, created_at
		FROM generations
		WHERE listing_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load generations: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]*model.Generation, len(listingIDs))
	for rows.Next() {
		var gen model.Generation
		err := rows.Scan(
			&gen.ID,
			&gen.ListingID,
			&gen.ContentType,
			&gen.Content,
			&gen.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		result[gen.ListingID] = append(result[gen.ListingID], &gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}

	return result, nil
}
