package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, password_hash, display_name, first_name, last_name, is_admin, created_at`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// Create inserts u. An email already in use yields CONFLICT.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now()
	err := inTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`, u.Email); err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.CodeConflict, "User already exists")
		}
		_, err := tx.ExecContext(ctx, `
		  INSERT INTO users(id, email, password_hash, display_name, first_name, last_name, is_admin, created_at, updated_at)
		  VALUES (?,?,?,?,?,?,?,?,?)`,
			u.ID, u.Email, u.Hash, u.DisplayName, u.FirstName, u.LastName, boolInt(u.IsAdmin), u.CreatedAt, u.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the name fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, displayName, firstName, lastName string) (*domain.User, error) {
	res, err := r.DB.ExecContext(ctx, `
	  UPDATE users SET display_name = ?, first_name = ?, last_name = ?, updated_at = ?
	  WHERE id = ?`, displayName, firstName, lastName, now(), id)
	if err := mustAffect(res, err, "user"); err != nil {
		return nil, err
	}
	return r.ByID(ctx, id)
}

// List returns users newest first for the admin screen.
func (r *UserRepo) List(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.User{}
	err := r.DB.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT ?`, limit)
	return out, err
}

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, user_id, type, first_name, last_name, address_line_1, address_line_2,
	city, state, postal_code, country, phone, is_default, created_at, updated_at`

func (r *AddressRepo) List(ctx context.Context, userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+addressCols+` FROM user_addresses
	  WHERE user_id = ?
	  ORDER BY is_default DESC, created_at DESC`, userID)
	return out, err
}

// Get returns the user's address; addresses of other users are NOT_FOUND.
func (r *AddressRepo) Get(ctx context.Context, userID, id string) (domain.Address, error) {
	var a domain.Address
	err := r.db.GetContext(ctx, &a, `SELECT `+addressCols+` FROM user_addresses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return domain.Address{}, notFound(err, "address")
	}
	return a, nil
}

// Save inserts a (no id) or updates it. A default address clears the default
// flag of the user's other addresses of the same type.
func (r *AddressRepo) Save(ctx context.Context, a domain.Address) (domain.Address, error) {
	ts := now()
	a.UpdatedAt = ts
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, `
			  UPDATE user_addresses SET is_default = 0
			  WHERE user_id = ? AND type = ? AND id <> ?`, a.UserID, string(a.Type), a.ID); err != nil {
				return err
			}
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
			a.CreatedAt = ts
			_, err := tx.ExecContext(ctx, `
			  INSERT INTO user_addresses(`+addressCols+`)
			  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
				a.ID, a.UserID, string(a.Type), a.FirstName, a.LastName, a.AddressLine1, a.AddressLine2,
				a.City, a.State, a.PostalCode, a.Country, a.Phone, boolInt(a.IsDefault), a.CreatedAt, a.UpdatedAt)
			return err
		}
		res, err := tx.ExecContext(ctx, `
		  UPDATE user_addresses SET
		    type = ?, first_name = ?, last_name = ?, address_line_1 = ?, address_line_2 = ?,
		    city = ?, state = ?, postal_code = ?, country = ?, phone = ?, is_default = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
			string(a.Type), a.FirstName, a.LastName, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.Phone, boolInt(a.IsDefault), a.UpdatedAt, a.ID, a.UserID)
		return mustAffect(res, err, "address")
	})
	if err != nil {
		return domain.Address{}, err
	}
	return r.Get(ctx, a.UserID, a.ID)
}

func (r *AddressRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_addresses WHERE id = ? AND user_id = ?`, id, userID)
	return mustAffect(res, err, "address")
}
