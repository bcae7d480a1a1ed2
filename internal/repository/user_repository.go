package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/utils"
)

// UserRepo persists accounts. Emails are normalized to lower case before
// any read or write so uniqueness holds regardless of input casing.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

const (
	insertUserQuery      = `INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`
	selectUserByIDQuery  = `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`
	userByEmailQuery     = `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`
	listUsersQuery       = `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	countUsersQuery      = `SELECT COUNT(*) FROM users`
	mysqlErrDuplicateKey = 1062
)

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes the password and inserts the account. A duplicate email
// reports ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, insertUserQuery, name, email, hash, role)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateKey {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx, userByEmailQuery, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UserPatch carries optional account changes; nil fields stay untouched.
// Password is rehashed before storage when set.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	IsActive *bool
}

// Update applies the patch and returns the refreshed account. A patched
// email colliding with another account reports ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch, cost int) (*model.User, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Password != nil {
		hash, err := utils.HashPassword(*p.Password, cost)
		if err != nil {
			return nil, err
		}
		add("password_hash", hash)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if len(set) > 0 {
		q := `UPDATE users SET ` + strings.Join(set, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlErrDuplicateKey {
				return nil, ErrEmailExists
			}
			return nil, err
		}
	}
	// Absent accounts surface as ErrUserNotFound here.
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes an account. The row stays so ticket history
// keeps its holder; the user just cannot log in anymore.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
	}
	return nil
}

// List returns accounts ordered by id, paginated.
func (r *UserRepo) List(ctx context.Context, page, perPage int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, countUsersQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, listUsersQuery, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
