package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/config"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/shenikar/transport_incident_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy models.UserSnapshot) error
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, int, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// UserRepository определяет контракт для чтения учетных записей
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, caller *models.User, incident *models.Incident) error
	GetIncident(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, caller *models.User, filter models.IncidentFilter) (*models.IncidentPage, error)
	DeleteIncident(ctx context.Context, caller *models.User, id uuid.UUID) error
	UpdateStatus(ctx context.Context, caller *models.User, id uuid.UUID, status string) (*models.Incident, error)
	AddComment(ctx context.Context, caller *models.User, incidentID uuid.UUID, content string) ([]models.Comment, error)
}

type incidentService struct {
	repo      IncidentRepository
	users     UserRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
}

func NewIncidentService(repo IncidentRepository, users UserRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.WebhookPublisher) IncidentService {
	return &incidentService{
		repo:      repo,
		users:     users,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
	}
}

// CreateIncident создает инцидент от имени вызывающего.
// reported_by всегда берется из учетной записи вызывающего, а не из запроса.
func (s *incidentService) CreateIncident(ctx context.Context, caller *models.User, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   incident.Title,
	})
	log.Info("Attempting to create a new incident")

	if err := authorize(OpCreate, caller, nil); err != nil {
		log.WithError(err).Warn("Create incident denied")
		return err
	}
	if err := validateNewIncident(incident); err != nil {
		log.WithError(err).Warn("Incident validation failed")
		return err
	}

	// Аутентифицированная идентичность обязана сходиться с учетной записью
	reporter, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		log.WithError(err).Warn("Caller does not resolve to a known user")
		return err
	}

	incident.Status = models.StatusPending
	incident.ReportedBy = reporter.Snapshot()

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	s.publish(ctx, webhook.WebhookEvent{
		Event:      webhook.EventIncidentCreated,
		IncidentID: incident.ID,
		Title:      incident.Title,
		Status:     incident.Status,
		ActorEmail: reporter.Email,
		Timestamp:  time.Now(),
	})

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID, сначала пробуя кеш
func (s *incidentService) GetIncident(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	if err := authorize(OpRead, caller, nil); err != nil {
		return nil, err
	}

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		// Сбой кеша не фатален, идем в БД
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Info("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from repository")
		return nil, err
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает окно выборки с данными пагинации.
// page и limit нормализуются: значения меньше 1 заменяются умолчаниями,
// limit сверху ограничен maxPageLimit.
func (s *incidentService) ListIncidents(ctx context.Context, caller *models.User, filter models.IncidentFilter) (*models.IncidentPage, error) {
	if err := authorize(OpRead, caller, nil); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		filter.Limit = defaultPageLimit
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
		"page":    filter.Page,
		"limit":   filter.Limit,
		"search":  filter.Search,
	})
	log.Info("Listing incidents")

	incidents, total, err := s.repo.ListIncidents(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	page := &models.IncidentPage{
		Incidents:  incidents,
		Total:      total,
		Page:       filter.Page,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return page, nil
}

// DeleteIncident удаляет инцидент. Сначала проверяется существование записи,
// потом права: not-found для несуществующей записи возвращается и тому,
// у кого не было бы прав на удаление.
func (s *incidentService) DeleteIncident(ctx context.Context, caller *models.User, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	if caller == nil {
		return apperr.ErrUnauthenticated
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent incident")
		return err
	}

	if err := authorize(OpDelete, caller, incident); err != nil {
		log.WithError(err).Warn("Delete incident denied")
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	log.Info("Incident deleted successfully")
	return nil
}

// UpdateStatus переводит инцидент в целевой статус. Переходы не упорядочены:
// любой из четырех статусов допустим из любого текущего - ограничивается
// только само множество значений и роль вызывающего.
func (s *incidentService) UpdateStatus(ctx context.Context, caller *models.User, id uuid.UUID, status string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})
	log.Info("Attempting to update incident status")

	if err := authorize(OpUpdateStatus, caller, nil); err != nil {
		log.WithError(err).Warn("Status update denied")
		return nil, err
	}

	if id == uuid.Nil {
		return nil, apperr.Validation("incident id is required")
	}
	if status == "" {
		return nil, apperr.Validation("status is required")
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("invalid status value %q", status)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		log.WithError(err).Warn("Attempted to update status of a non-existent incident")
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status, caller.Snapshot()); err != nil {
		log.WithError(err).Error("Failed to update incident status in repository")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after status update")
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}

	s.publish(ctx, webhook.WebhookEvent{
		Event:      webhook.EventIncidentStatusChanged,
		IncidentID: updated.ID,
		Title:      updated.Title,
		Status:     updated.Status,
		ActorEmail: caller.Email,
		Timestamp:  time.Now(),
	})

	log.Info("Incident status updated successfully")
	return updated, nil
}

// AddComment добавляет комментарий в ленту инцидента и возвращает
// обновленную ленту
func (s *incidentService) AddComment(ctx context.Context, caller *models.User, incidentID uuid.UUID, content string) ([]models.Comment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "AddComment",
		"incident_id": incidentID,
	})
	log.Info("Attempting to add comment")

	if err := authorize(OpComment, caller, nil); err != nil {
		log.WithError(err).Warn("Add comment denied")
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}

	if _, err := s.repo.GetByID(ctx, incidentID); err != nil {
		log.WithError(err).Warn("Attempted to comment on a non-existent incident")
		return nil, err
	}

	comment := &models.Comment{
		IncidentID:  incidentID,
		Content:     content,
		AuthorName:  caller.Name,
		AuthorEmail: caller.Email,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		log.WithError(err).Error("Failed to add comment in repository")
		return nil, fmt.Errorf("service: could not add comment: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, incidentID); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	updated, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after comment")
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}

	log.Info("Comment added successfully")
	return updated.Comments, nil
}

// publish отправляет событие в очередь вебхуков. Сбой публикации не
// откатывает уже совершенную запись: событие теряется, операция - нет.
func (s *incidentService) publish(ctx context.Context, event webhook.WebhookEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", event.Event).Error("Failed to publish webhook event")
	}
}

// validateNewIncident проверяет обязательные поля создаваемого инцидента
func validateNewIncident(incident *models.Incident) error {
	if strings.TrimSpace(incident.Title) == "" {
		return apperr.Validation("title is required")
	}
	if strings.TrimSpace(incident.LocationAddress) == "" {
		return apperr.Validation("location address is required")
	}
	if strings.TrimSpace(incident.Type) == "" {
		return apperr.Validation("type is required")
	}
	return nil
}
