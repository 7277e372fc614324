package models

import "github.com/google/uuid"

// Роли пользователей. Набор фиксирован на уровне приложения.
const (
	RoleUser     = "user"
	RoleOfficial = "official"
	RoleAdmin    = "admin"
)

// User - учетная запись. Для этого сервиса сущность read-only:
// создание и изменение пользователей делает внешний identity provider.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// Snapshot возвращает денормализованную копию пользователя для встраивания
// в reported_by/updated_by/author
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
