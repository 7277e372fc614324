package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жизненного цикла инцидента. Других значений в БД быть не может.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// ValidStatus проверяет, входит ли значение в фиксированный набор статусов
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// UserSnapshot - денормализованная копия данных пользователя на момент операции.
// Не живая ссылка: последующие изменения профиля на нее не влияют.
type UserSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Incident struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	LocationAddress string        `json:"location_address"`
	Type            string        `json:"type"`
	Severity        string        `json:"severity"`
	Description     string        `json:"description"`
	PhotoURL        string        `json:"photo_url,omitempty"`
	Status          string        `json:"status"`
	ReportedBy      UserSnapshot  `json:"reported_by"`
	UpdatedBy       *UserSnapshot `json:"updated_by,omitempty"`
	Comments        []Comment     `json:"comments,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Comment - запись в ленте комментариев инцидента. Лента append-only:
// редактирование и удаление не предусмотрены.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncidentFilter - параметры выборки списка инцидентов
type IncidentFilter struct {
	Search string
	Page   int
	Limit  int
}

// IncidentPage - страница выборки вместе с данными для пагинации
type IncidentPage struct {
	Incidents  []*Incident `json:"incidents"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}
