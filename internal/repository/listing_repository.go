package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwangik/farm-produce-market/internal/model"
)

type ListingRepo struct{ DB *sql.DB }

func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{DB: db} }

// ListingRow is a listing together with the farmer and category
// summaries embedded into API responses.
type ListingRow struct {
	model.Listing
	Farmer   *model.FarmerSummary
	Category *model.CategorySummary
}

// CreateListingParams collects the validated fields of a new listing.
type CreateListingParams struct {
	FarmerID     string
	CropType     string
	Quantity     float64
	Unit         string
	PricePerUnit float64
	HarvestDate  time.Time
	Location     string
	Description  *string
	CategoryID   *string
}

// ListingPatch carries optional fields of a partial update. Nil
// fields are left unchanged.
type ListingPatch struct {
	CropType     *string
	Quantity     *float64
	Unit         *string
	PricePerUnit *float64
	HarvestDate  *time.Time
	Location     *string
	Description  *string
	CategoryID   *string
	IsActive     *bool
}

// ListingQuery defines filters and pagination for buyer-facing
// queries. Zero values mean "no filter".
type ListingQuery struct {
	Search           string // contains over crop type, description, location
	County           string // exact location match
	Crop             string // exact crop type match
	CropContains     string // case-insensitive crop type contains
	LocationContains string // case-insensitive location contains
	CategoryID       string
	MinPrice         *float64
	MaxPrice         *float64
	HarvestFrom      *time.Time
	HarvestTo        *time.Time
	Page             int
	Limit            int
}

const listingSelect = `SELECT
		l.id, l.farmer_id, l.crop_type, l.quantity, l.unit, l.price_per_unit,
		l.harvest_date, l.location, l.description, l.category_id, l.is_active,
		l.created_at, l.updated_at,
		f.full_name, f.phone_number,
		c.name
	FROM produce_listings l
	JOIN users f ON f.id = l.farmer_id
	LEFT JOIN categories c ON c.id = l.category_id`

func scanListingRow(scan func(dest ...any) error) (ListingRow, error) {
	var (
		row      ListingRow
		fullName string
		phone    string
		catName  sql.NullString
	)
	err := scan(
		&row.ID, &row.FarmerID, &row.CropType, &row.Quantity, &row.Unit,
		&row.PricePerUnit, &row.HarvestDate, &row.Location, &row.Description,
		&row.CategoryID, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
		&fullName, &phone, &catName)
	if err != nil {
		return ListingRow{}, err
	}
	row.Farmer = &model.FarmerSummary{ID: row.FarmerID, FullName: fullName, PhoneNumber: phone}
	if row.CategoryID != nil && catName.Valid {
		row.Category = &model.CategorySummary{ID: *row.CategoryID, Name: catName.String}
	}
	return row, nil
}

func (r *ListingRepo) queryRows(ctx context.Context, query string, args ...any) ([]ListingRow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ListingRow{}
	for rows.Next() {
		row, err := scanListingRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Create inserts a listing for the farmer and returns the stored row.
func (r *ListingRepo) Create(ctx context.Context, p CreateListingParams) (ListingRow, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO produce_listings
		 (id, farmer_id, crop_type, quantity, unit, price_per_unit, harvest_date, location, description, category_id, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?,1)`,
		id, p.FarmerID, p.CropType, p.Quantity, p.Unit, p.PricePerUnit,
		p.HarvestDate, p.Location, p.Description, p.CategoryID)
	if err != nil {
		return ListingRow{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a single listing with its embedded summaries.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (ListingRow, error) {
	row, err := scanListingRow(r.DB.QueryRowContext(ctx, listingSelect+" WHERE l.id=? LIMIT 1", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return ListingRow{}, ErrNotFound
	}
	return row, err
}

// ListByFarmer returns all of a farmer's listings, active or not,
// newest first.
func (r *ListingRepo) ListByFarmer(ctx context.Context, farmerID string) ([]ListingRow, error) {
	return r.queryRows(ctx,
		listingSelect+" WHERE l.farmer_id=? ORDER BY l.created_at DESC, l.id DESC", farmerID)
}

// QueryActive runs the buyer-facing query over active listings and
// returns the page of rows plus the total match count.
func (r *ListingRepo) QueryActive(ctx context.Context, q ListingQuery) ([]ListingRow, int64, error) {
	where := []string{"l.is_active = 1"}
	args := []any{}

	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		where = append(where,
			"(LOWER(l.crop_type) LIKE ? OR LOWER(l.description) LIKE ? OR LOWER(l.location) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if q.County != "" {
		where = append(where, "l.location = ?")
		args = append(args, q.County)
	}
	if q.Crop != "" {
		where = append(where, "l.crop_type = ?")
		args = append(args, q.Crop)
	}
	if q.CropContains != "" {
		where = append(where, "LOWER(l.crop_type) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.CropContains)+"%")
	}
	if q.LocationContains != "" {
		where = append(where, "LOWER(l.location) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.LocationContains)+"%")
	}
	if q.CategoryID != "" {
		where = append(where, "l.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.MinPrice != nil {
		where = append(where, "l.price_per_unit >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "l.price_per_unit <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.HarvestFrom != nil {
		where = append(where, "l.harvest_date >= ?")
		args = append(args, *q.HarvestFrom)
	}
	if q.HarvestTo != nil {
		where = append(where, "l.harvest_date <= ?")
		args = append(args, *q.HarvestTo)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM produce_listings l WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	offset := (q.Page - 1) * q.Limit
	dataSQL := listingSelect + " WHERE " + cond +
		" ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	out, err := r.queryRows(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// PublicNewest returns the newest active listings for the
// unauthenticated landing surface.
func (r *ListingRepo) PublicNewest(ctx context.Context, limit int) ([]ListingRow, error) {
	return r.queryRows(ctx,
		listingSelect+" WHERE l.is_active = 1 ORDER BY l.created_at DESC, l.id DESC LIMIT ?", limit)
}

// Update applies a partial update to a listing owned by farmerID. The
// ownership check and the mutation run in one transaction so two
// racing writers cannot interleave between check and write. A missing
// row and a row owned by someone else are indistinguishable.
func (r *ListingRepo) Update(ctx context.Context, listingID, farmerID string, patch ListingPatch) (ListingRow, error) {
	set := []string{}
	args := []any{}
	if patch.CropType != nil {
		set = append(set, "crop_type=?")
		args = append(args, *patch.CropType)
	}
	if patch.Quantity != nil {
		set = append(set, "quantity=?")
		args = append(args, *patch.Quantity)
	}
	if patch.Unit != nil {
		set = append(set, "unit=?")
		args = append(args, *patch.Unit)
	}
	if patch.PricePerUnit != nil {
		set = append(set, "price_per_unit=?")
		args = append(args, *patch.PricePerUnit)
	}
	if patch.HarvestDate != nil {
		set = append(set, "harvest_date=?")
		args = append(args, *patch.HarvestDate)
	}
	if patch.Location != nil {
		set = append(set, "location=?")
		args = append(args, *patch.Location)
	}
	if patch.Description != nil {
		set = append(set, "description=?")
		args = append(args, *patch.Description)
	}
	if patch.CategoryID != nil {
		set = append(set, "category_id=?")
		args = append(args, *patch.CategoryID)
	}
	if patch.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *patch.IsActive)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return ListingRow{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM produce_listings WHERE id=? AND farmer_id=? FOR UPDATE",
		listingID, farmerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ListingRow{}, ErrNotFound
	}
	if err != nil {
		return ListingRow{}, err
	}

	if len(set) > 0 {
		args = append(args, listingID)
		if _, err := tx.ExecContext(ctx,
			"UPDATE produce_listings SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return ListingRow{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return ListingRow{}, err
	}
	return r.GetByID(ctx, listingID)
}

// SoftDelete toggles a listing's active flag off under the same
// ownership rule as Update.
func (r *ListingRepo) SoftDelete(ctx context.Context, listingID, farmerID string) error {
	active := false
	_, err := r.Update(ctx, listingID, farmerID, ListingPatch{IsActive: &active})
	return err
}

// OwnerAndActive resolves a listing's owner and active flag. Used by
// the interaction log to denormalize the farmer id at write time.
func (r *ListingRepo) OwnerAndActive(ctx context.Context, listingID string) (string, bool, error) {
	var (
		farmerID string
		active   bool
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT farmer_id, is_active FROM produce_listings WHERE id=? LIMIT 1",
		listingID).Scan(&farmerID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, ErrNotFound
	}
	return farmerID, active, err
}

// StatsByFarmer returns total and active listing counts for a farmer.
func (r *ListingRepo) StatsByFarmer(ctx context.Context, farmerID string) (total, active int64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM produce_listings WHERE farmer_id=?",
		farmerID).Scan(&total, &active)
	return total, active, err
}

// TopListing pairs a listing with its interaction count for the
// farmer dashboard.
type TopListing struct {
	ListingRow
	InteractionCount int64
}

// TopByInteractions returns a farmer's most engaged active listings.
func (r *ListingRepo) TopByInteractions(ctx context.Context, farmerID string, limit int) ([]TopListing, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			l.id, l.farmer_id, l.crop_type, l.quantity, l.unit, l.price_per_unit,
			l.harvest_date, l.location, l.description, l.category_id, l.is_active,
			l.created_at, l.updated_at,
			f.full_name, f.phone_number,
			c.name,
			(SELECT COUNT(*) FROM interactions i WHERE i.listing_id = l.id) AS interaction_count
		FROM produce_listings l
		JOIN users f ON f.id = l.farmer_id
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE l.farmer_id=? AND l.is_active = 1
		ORDER BY interaction_count DESC, l.created_at DESC
		LIMIT ?`, farmerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopListing{}
	for rows.Next() {
		var (
			row      ListingRow
			fullName string
			phone    string
			catName  sql.NullString
			count    int64
		)
		err := rows.Scan(
			&row.ID, &row.FarmerID, &row.CropType, &row.Quantity, &row.Unit,
			&row.PricePerUnit, &row.HarvestDate, &row.Location, &row.Description,
			&row.CategoryID, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
			&fullName, &phone, &catName, &count)
		if err != nil {
			return nil, err
		}
		row.Farmer = &model.FarmerSummary{ID: row.FarmerID, FullName: fullName, PhoneNumber: phone}
		if row.CategoryID != nil && catName.Valid {
			row.Category = &model.CategorySummary{ID: *row.CategoryID, Name: catName.String}
		}
		out = append(out, TopListing{ListingRow: row, InteractionCount: count})
	}
	return out, rows.Err()
}
