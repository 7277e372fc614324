package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/shenikar/transport_incident_system/internal/service"
)

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

const incidentColumns = `
	id,
	title,
	location_address,
	type,
	severity,
	description,
	photo_url,
	status,
	reported_by_id,
	reported_by_name,
	reported_by_email,
	updated_by_id,
	updated_by_name,
	updated_by_email,
	created_at,
	updated_at`

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (title, location_address, type, severity, description, photo_url, status,
			reported_by_id, reported_by_name, reported_by_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.LocationAddress,
		incident.Type,
		incident.Severity,
		incident.Description,
		incident.PhotoURL,
		incident.Status,
		incident.ReportedBy.ID,
		incident.ReportedBy.Name,
		incident.ReportedBy.Email,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to create incident: %w", err))
	}
	return nil
}

// GetByID возвращает инцидент по его UUID вместе с лентой комментариев
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("incident with id %s", id)
		}
		return nil, apperr.Store(fmt.Errorf("failed to get incident by id: %w", err))
	}

	comments, err := r.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	incident.Comments = comments
	return incident, nil
}

// Delete удаляет инцидент. Комментарии уходят каскадом на уровне схемы.
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1;`, id)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to delete incident: %w", err))
	}

	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("incident with id %s", id)
	}
	return nil
}

// UpdateStatus меняет статус инцидента и фиксирует, кто его поменял
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy models.UserSnapshot) error {
	query := `
		UPDATE incidents SET
			status = $1,
			updated_by_id = $2,
			updated_by_name = $3,
			updated_by_email = $4,
			updated_at = NOW()
		WHERE id = $5;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, updatedBy.ID, updatedBy.Name, updatedBy.Email, id)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to update incident status: %w", err))
	}

	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("incident with id %s", id)
	}
	return nil
}

// ListIncidents возвращает окно выборки и общее число записей под фильтром.
// Сортировка по created_at DESC обязательна: на ней держится стабильность
// пагинации.
func (r *IncidentRepository) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, int, error) {
	whereSQL, args := buildIncidentWhere(filter.Search)

	countQuery := `SELECT COUNT(*) FROM incidents ` + whereSQL
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Store(fmt.Errorf("failed to count incidents: %w", err))
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)

	query := `SELECT ` + incidentColumns + `
		FROM incidents ` + whereSQL + `
		ORDER BY created_at DESC
		LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Store(fmt.Errorf("failed to list incidents: %w", err))
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, 0, apperr.Store(fmt.Errorf("failed to scan incident row: %w", err))
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Store(fmt.Errorf("error list iteration: %w", err))
	}
	return incidents, total, nil
}

// AddComment добавляет комментарий в конец ленты инцидента и
// обновляет updated_at самого инцидента
func (r *IncidentRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (incident_id, content, author_name, author_email)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		comment.IncidentID,
		comment.Content,
		comment.AuthorName,
		comment.AuthorEmail,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to add comment: %w", err))
	}

	if _, err := r.db.Exec(ctx, `UPDATE incidents SET updated_at = NOW() WHERE id = $1;`, comment.IncidentID); err != nil {
		return apperr.Store(fmt.Errorf("failed to touch incident after comment: %w", err))
	}
	return nil
}

// listComments возвращает комментарии инцидента в порядке добавления
func (r *IncidentRepository) listComments(ctx context.Context, incidentID uuid.UUID) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, incident_id, content, author_name, author_email, created_at
		FROM comments
		WHERE incident_id = $1
		ORDER BY created_at ASC;
	`, incidentID)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("failed to list comments: %w", err))
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.IncidentID, &c.Content, &c.AuthorName, &c.AuthorEmail, &c.CreatedAt); err != nil {
			return nil, apperr.Store(fmt.Errorf("failed to scan comment row: %w", err))
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(fmt.Errorf("error comments iteration: %w", err))
	}
	return comments, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.ID.String())
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("incident:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

// buildIncidentWhere собирает WHERE-условие для поискового запроса.
// Поиск - дизъюнкция ILIKE-подстрок по четырем текстовым полям.
func buildIncidentWhere(search string) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(search); s != "" {
		p := "%" + escapeLike(s) + "%"
		args = append(args, p)
		n := itoa(len(args))
		clauses = append(clauses,
			"(title ILIKE $"+n+" OR description ILIKE $"+n+
				" OR location_address ILIKE $"+n+" OR type ILIKE $"+n+")")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike нейтрализует метасимволы LIKE, чтобы пользовательский
// терм сопоставлялся буквально, а не как шаблон
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var updatedByID *uuid.UUID
	var updatedByName, updatedByEmail *string

	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.LocationAddress,
		&incident.Type,
		&incident.Severity,
		&incident.Description,
		&incident.PhotoURL,
		&incident.Status,
		&incident.ReportedBy.ID,
		&incident.ReportedBy.Name,
		&incident.ReportedBy.Email,
		&updatedByID,
		&updatedByName,
		&updatedByEmail,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if updatedByID != nil {
		incident.UpdatedBy = &models.UserSnapshot{
			ID:    *updatedByID,
			Name:  derefString(updatedByName),
			Email: derefString(updatedByEmail),
		}
	}
	return incident, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func itoa(i int) string { return strconv.Itoa(i) }
