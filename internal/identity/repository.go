package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserExists occurs when the phone number is already registered.
	ErrUserExists = errors.New("account already exists for this phone")

	// ErrUserNotFound occurs when no account matches the lookup.
	ErrUserNotFound = errors.New("account not found")
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	IncrementGroupsCreated(ctx context.Context, id string) error
	AddSpent(ctx context.Context, id string, amount int64) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, phone, created_at, groups_created, total_spent)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, user.Name, user.Phone, user.CreatedAt.UTC(), user.GroupsCreated, user.TotalSpent)
	return err
}

// FindByPhone fetches a user by normalized phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `SELECT id, name, phone, created_at, groups_created, total_spent
        FROM users WHERE phone = $1`, phone)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return r.findOne(ctx, `SELECT id, name, phone, created_at, groups_created, total_spent
        FROM users WHERE id = $1`, userID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	row := r.db.QueryRow(ctx, query, arg)
	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Name, &user.Phone, &createdAt, &user.GroupsCreated, &user.TotalSpent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

// IncrementGroupsCreated bumps the user's lifetime group counter.
func (r *PostgresRepository) IncrementGroupsCreated(ctx context.Context, id string) error {
	return r.update(ctx, `UPDATE users SET groups_created = groups_created + 1 WHERE id = $1`, id)
}

// AddSpent adds an approved expense amount to the user's lifetime spend.
func (r *PostgresRepository) AddSpent(ctx context.Context, id string, amount int64) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET total_spent = total_spent + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) update(ctx context.Context, query, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
