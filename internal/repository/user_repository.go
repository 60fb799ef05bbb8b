package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// RegisterParams collects everything needed to create a user together
// with its profile row.
type RegisterParams struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Role        string
	Location    *string
	FarmSize    *float64
	BcryptCost  int
}

const userColumns = "id,email,password_hash,full_name,phone_number,role,is_active,created_at,updated_at"

// Create inserts the user and its profile in a single transaction and
// returns the stored user. The email is case-folded before storage so
// uniqueness is case-insensitive.
func (r *UserRepo) Create(ctx context.Context, p RegisterParams) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	hash, err := utils.HashPassword(p.Password, p.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	id := uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, full_name, phone_number, role) VALUES (?,?,?,?,?,?)",
		id, email, hash, p.FullName, p.PhoneNumber, p.Role)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO user_profiles (user_id, location, farm_size) VALUES (?,?,?)",
		id, p.Location, p.FarmSize)
	if err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetProfile returns the profile row for a user, or an empty profile
// when none exists yet.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, location, farm_size FROM user_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.Location, &p.FarmSize)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{UserID: userID}, nil
	}
	return p, err
}

// ProfilePatch carries the optional fields of a profile update. Nil
// fields are left unchanged.
type ProfilePatch struct {
	FullName    *string
	PhoneNumber *string
	Location    *string
	FarmSize    *float64
}

// UpdateProfile applies the patch to the users row and upserts the
// profile row. Only supplied fields are changed.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	set := []string{}
	args := []any{}
	if patch.FullName != nil {
		set = append(set, "full_name=?")
		args = append(args, *patch.FullName)
	}
	if patch.PhoneNumber != nil {
		set = append(set, "phone_number=?")
		args = append(args, *patch.PhoneNumber)
	}
	if len(set) > 0 {
		args = append(args, userID)
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return err
		}
	}
	if patch.Location != nil || patch.FarmSize != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id, location, farm_size) VALUES (?,?,?)
			 ON DUPLICATE KEY UPDATE
			   location = COALESCE(VALUES(location), location),
			   farm_size = COALESCE(VALUES(farm_size), farm_size)`,
			userID, patch.Location, patch.FarmSize); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdatePassword replaces the stored hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
