package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwangik/farm-produce-market/internal/model"
)

// InteractionRepo is the append-only log of buyer engagement.
// Interactions are never updated or deleted.
type InteractionRepo struct{ DB *sql.DB }

func NewInteractionRepo(db *sql.DB) *InteractionRepo { return &InteractionRepo{DB: db} }

// Create records an interaction. The listing must exist and be
// active; the owning farmer id is read from the listing and persisted
// on the interaction row so later listing changes do not disturb
// aggregates.
func (r *InteractionRepo) Create(ctx context.Context, buyerID, listingID, typ string, metadata json.RawMessage) (model.Interaction, error) {
	var (
		farmerID string
		active   bool
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT farmer_id, is_active FROM produce_listings WHERE id=? LIMIT 1",
		listingID).Scan(&farmerID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interaction{}, ErrNotFound
	}
	if err != nil {
		return model.Interaction{}, err
	}
	if !active {
		return model.Interaction{}, ErrListingInactive
	}

	in := model.Interaction{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		FarmerID:  farmerID,
		ListingID: listingID,
		Type:      typ,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	var meta any
	if len(metadata) > 0 {
		meta = []byte(metadata)
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO interactions (id, buyer_id, farmer_id, listing_id, type, metadata, created_at) VALUES (?,?,?,?,?,?,?)",
		in.ID, in.BuyerID, in.FarmerID, in.ListingID, in.Type, meta, in.CreatedAt)
	if err != nil {
		return model.Interaction{}, err
	}
	return in, nil
}

// ListingSummary is the listing subset attached to interaction rows
// on the dashboards.
type ListingSummary struct {
	ID           string  `json:"id"`
	CropType     string  `json:"cropType"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Location     string  `json:"location"`
}

// UserSummary identifies the counterparty of an interaction.
type UserSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// InteractionDetail is an interaction joined with its listing and the
// counterparty (buyer on the farmer dashboard, farmer on the buyer
// dashboard).
type InteractionDetail struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Listing   ListingSummary  `json:"listing"`
	Buyer     *UserSummary    `json:"buyer,omitempty"`
	Farmer    *UserSummary    `json:"farmer,omitempty"`
}

const interactionDetailSelect = `SELECT
		i.id, i.type, i.metadata, i.created_at,
		l.id, l.crop_type, l.quantity, l.unit, l.price_per_unit, l.location,
		u.id, u.full_name
	FROM interactions i
	JOIN produce_listings l ON l.id = i.listing_id
	JOIN users u ON u.id = `

func (r *InteractionRepo) listDetails(ctx context.Context, query string, counterpartyBuyer bool, args ...any) ([]InteractionDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InteractionDetail{}
	for rows.Next() {
		var (
			d    InteractionDetail
			meta sql.NullString
			u    UserSummary
		)
		err := rows.Scan(
			&d.ID, &d.Type, &meta, &d.CreatedAt,
			&d.Listing.ID, &d.Listing.CropType, &d.Listing.Quantity,
			&d.Listing.Unit, &d.Listing.PricePerUnit, &d.Listing.Location,
			&u.ID, &u.FullName)
		if err != nil {
			return nil, err
		}
		if meta.Valid {
			d.Metadata = json.RawMessage(meta.String)
		}
		if counterpartyBuyer {
			b := u
			d.Buyer = &b
		} else {
			f := u
			d.Farmer = &f
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecentByFarmer returns the most recent interactions on a farmer's
// listings, with buyer identities attached.
func (r *InteractionRepo) RecentByFarmer(ctx context.Context, farmerID string, limit int) ([]InteractionDetail, error) {
	query := interactionDetailSelect + `i.buyer_id
		WHERE i.farmer_id=?
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ?`
	return r.listDetails(ctx, query, true, farmerID, limit)
}

// RecentByBuyer returns a buyer's most recent interactions with
// farmer identities attached.
func (r *InteractionRepo) RecentByBuyer(ctx context.Context, buyerID string, limit int) ([]InteractionDetail, error) {
	query := interactionDetailSelect + `i.farmer_id
		WHERE i.buyer_id=?
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ?`
	return r.listDetails(ctx, query, false, buyerID, limit)
}

// CountsByType groups a user's interactions by type. The column
// argument selects which side of the interaction is counted.
func (r *InteractionRepo) countsByType(ctx context.Context, column, userID string) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT type, COUNT(*) FROM interactions WHERE "+column+"=? GROUP BY type", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			typ string
			n   int64
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

// CountsByTypeForFarmer groups interactions on a farmer's listings by type.
func (r *InteractionRepo) CountsByTypeForFarmer(ctx context.Context, farmerID string) (map[string]int64, error) {
	return r.countsByType(ctx, "farmer_id", farmerID)
}

// CountsByTypeForBuyer groups a buyer's interactions by type.
func (r *InteractionRepo) CountsByTypeForBuyer(ctx context.Context, buyerID string) (map[string]int64, error) {
	return r.countsByType(ctx, "buyer_id", buyerID)
}

// RecentByListings returns up to perListing of the newest
// interactions for each of the given listings, keyed by listing id.
// Used to decorate the farmer's own-listings view.
func (r *InteractionRepo) RecentByListings(ctx context.Context, listingIDs []string, perListing int) (map[string][]InteractionDetail, error) {
	out := map[string][]InteractionDetail{}
	if len(listingIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(listingIDs))
	args := make([]any, len(listingIDs))
	for i, id := range listingIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `SELECT
		i.id, i.type, i.metadata, i.created_at,
		l.id, l.crop_type, l.quantity, l.unit, l.price_per_unit, l.location,
		u.id, u.full_name
	FROM (
		SELECT *, ROW_NUMBER() OVER (PARTITION BY listing_id ORDER BY created_at DESC, id DESC) AS rn
		FROM interactions
		WHERE listing_id IN (` + strings.Join(placeholders, ",") + `)
	) i
	JOIN produce_listings l ON l.id = i.listing_id
	JOIN users u ON u.id = i.buyer_id
	WHERE i.rn <= ?
	ORDER BY i.created_at DESC, i.id DESC`
	all, err := r.listDetails(ctx, query, true, append(args, perListing)...)
	if err != nil {
		return nil, err
	}
	for _, d := range all {
		out[d.Listing.ID] = append(out[d.Listing.ID], d)
	}
	return out, nil
}

