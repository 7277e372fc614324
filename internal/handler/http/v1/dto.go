package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title           string `json:"title" form:"title" validate:"required,min=2,max=255"`
	LocationAddress string `json:"location_address" form:"location_address" validate:"required,min=2,max=255"`
	Type            string `json:"type" form:"type" validate:"required,min=2,max=100"`
	Severity        string `json:"severity" form:"severity" validate:"required,max=50"`
	Description     string `json:"description,omitempty" form:"description"`
}

// UpdateStatusRequest DTO для смены статуса инцидента
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddCommentRequest DTO для добавления комментария
// @Description DTO для добавления комментария
type AddCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// UserSnapshotResponse DTO для вложенного снимка пользователя
// @Description DTO для вложенного снимка пользователя
type UserSnapshotResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CommentResponse DTO для комментария в ленте инцидента
// @Description DTO для комментария в ленте инцидента
type CommentResponse struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	LocationAddress string                `json:"location_address"`
	Type            string                `json:"type"`
	Severity        string                `json:"severity"`
	Description     string                `json:"description,omitempty"`
	PhotoURL        string                `json:"photo_url,omitempty"`
	Status          string                `json:"status"`
	ReportedBy      UserSnapshotResponse  `json:"reported_by"`
	UpdatedBy       *UserSnapshotResponse `json:"updated_by,omitempty"`
	Comments        []CommentResponse     `json:"comments,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// IncidentListResponse DTO для страницы списка инцидентов
// @Description DTO для страницы списка инцидентов
type IncidentListResponse struct {
	Incidents  []*IncidentResponse `json:"incidents"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}
