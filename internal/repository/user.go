package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/shenikar/transport_incident_system/internal/service"
)

// UserRepository читает учетные записи. Запись пользователей - зона
// ответственности внешнего identity provider, здесь только чтение.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по его UUID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, name, email, role FROM users WHERE id = $1;`

	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrUnknownCaller, id)
		}
		return nil, apperr.Store(fmt.Errorf("failed to get user by id: %w", err))
	}
	return user, nil
}
