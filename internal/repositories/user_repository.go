package repositories

import (
	"context"

	"timber-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore looks up portal users
type UserStore interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

var _ UserStore = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleViewer // Default role
	}
	return translate(r.DB.QueryRow(ctx,
		`INSERT INTO users(organisation_id, name, email, password_hash, role, is_active)
         VALUES($1, $2, $3, $4, $5, TRUE)
         RETURNING id, is_active, created_at, updated_at`,
		u.OrganisationID, u.Name, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetUser(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, organisation_id, name, email, password_hash, role, is_active, created_at, updated_at
         FROM users WHERE id=$1`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.OrganisationID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, organisation_id, name, email, password_hash, role, is_active, created_at, updated_at
         FROM users WHERE LOWER(email)=LOWER($1)`, email)

	var user models.User
	err := row.Scan(&user.ID, &user.OrganisationID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
