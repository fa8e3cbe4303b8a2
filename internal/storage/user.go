package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hapibara/hapibara-api/internal/domain/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, pass_hash, kindness_score FROM users WHERE email = $1", email)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PassHash, &user.KindnessScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, pass_hash, kindness_score FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PassHash, &user.KindnessScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, name, pass_hash, kindness_score) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Email, user.Name, user.PassHash, user.KindnessScore,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}
