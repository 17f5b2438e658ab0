package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/recipebox/recipebox-go/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicatePhone = errors.New("phone already exists")
)

const mysqlDuplicateEntry = 1062

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user, assigning its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, phone, password_hash, role, business_name, business_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := timestamp()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, query,
		id, user.Username, user.Phone, user.PasswordHash, string(user.Role),
		nullString(user.BusinessName), nullString(user.BusinessAddress), now, now,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicatePhone
		}
		return err
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByPhone retrieves a user by their phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := `SELECT id, username, phone, password_hash, role, business_name, business_address, created_at, updated_at
		FROM users WHERE phone = ?`

	return scanUser(r.db.QueryRowContext(ctx, query, phone))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, phone, password_hash, role, business_name, business_address, created_at, updated_at
		FROM users WHERE id = ?`

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user            model.User
		role            string
		businessName    sql.NullString
		businessAddress sql.NullString
	)

	err := row.Scan(
		&user.ID, &user.Username, &user.Phone, &user.PasswordHash, &role,
		&businessName, &businessAddress, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Role = model.Role(role)
	user.BusinessName = businessName.String
	user.BusinessAddress = businessAddress.String
	return &user, nil
}

// isDuplicateEntryError reports whether err is a unique-key violation from
// either supported driver.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}

	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// timestamp returns the current UTC time at the precision both schemas store.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
