package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/config"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/shenikar/transport_incident_system/internal/service/mocks"
	"github.com/shenikar/transport_incident_system/internal/webhook"
	webhook_mocks "github.com/shenikar/transport_incident_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, *mocks.MockIncidentRepository, *mocks.MockUserRepository, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	userMock := mocks.NewMockUserRepository(ctrl)
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{}

	service := NewIncidentService(repoMock, userMock, logger, cfg, webhookMock)
	return service.(*incidentService), repoMock, userMock, webhookMock
}

func reporter() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Anna Reporter",
		Email: "anna@example.com",
		Role:  models.RoleUser,
	}
}

func official() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Oleg Official",
		Email: "oleg@example.com",
		Role:  models.RoleOfficial,
	}
}

func admin() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Alla Admin",
		Email: "alla@example.com",
		Role:  models.RoleAdmin,
	}
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock, userMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incident := &models.Incident{
		Title:           "Bus collision",
		LocationAddress: "5th Ave",
		Type:            "collision",
		Severity:        "high",
	}

	// Ожидания
	userMock.EXPECT().GetByID(ctx, caller.ID).Return(caller, nil).Times(1)

	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			// Симулируем, что БД присвоила ID
			inc.ID = uuid.New()
			return nil
		}).Times(1)

	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		Do(func(ctx context.Context, event webhook.WebhookEvent) {
			assert.Equal(t, webhook.EventIncidentCreated, event.Event)
			assert.Equal(t, models.StatusPending, event.Status)
			assert.Equal(t, caller.Email, event.ActorEmail)
		}).Return(nil).Times(1)

	// Действие
	err := service.CreateIncident(ctx, caller, incident)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, incident.Status)
	assert.Equal(t, caller.Email, incident.ReportedBy.Email)
	assert.Equal(t, caller.Name, incident.ReportedBy.Name)
	assert.NotEqual(t, uuid.Nil, incident.ID)
}

func TestCreateIncident_Unauthenticated(t *testing.T) {
	// Подготовка
	service, _, _, _ := newTestIncidentService(t)
	ctx := context.Background()

	// Действие
	err := service.CreateIncident(ctx, nil, &models.Incident{Title: "x", LocationAddress: "y", Type: "z"})

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestCreateIncident_UnknownCaller(t *testing.T) {
	// Подготовка
	service, _, userMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incident := &models.Incident{
		Title:           "Bus collision",
		LocationAddress: "5th Ave",
		Type:            "collision",
	}

	// Ожидания: идентичность не сходится ни с одной учетной записью
	userMock.EXPECT().GetByID(ctx, caller.ID).Return(nil, apperr.ErrUnknownCaller).Times(1)

	// Действие
	err := service.CreateIncident(ctx, caller, incident)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnknownCaller)
}

func TestCreateIncident_MissingRequiredField(t *testing.T) {
	// Подготовка
	service, _, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()

	// Действие: без адреса
	err := service.CreateIncident(ctx, caller, &models.Incident{Title: "Bus collision", Type: "collision"})

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Инцидент из кеша",
	}

	// Ожидания
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, caller, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Инцидент из БД",
	}

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	// 2. Попадание в БД
	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// 3. Запись в кеш
	repoMock.EXPECT().
		SetIncidentCache(ctx, expectedIncident).
		Return(nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, caller, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()

	// Ожидания
	repoMock.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(nil, apperr.NotFound("incident with id %s", incidentID)).Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, caller, incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListIncidents_Success(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Title: "Инцидент 1"},
		{ID: uuid.New(), Title: "Инцидент 2"},
	}

	// Ожидания
	repoMock.EXPECT().
		ListIncidents(ctx, models.IncidentFilter{Page: 1, Limit: 10, Search: "collision"}).
		Return(expectedIncidents, 12, nil).
		Times(1)

	// Действие
	page, err := service.ListIncidents(ctx, caller, models.IncidentFilter{Page: 1, Limit: 10, Search: "collision"})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncidents, page.Incidents)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListIncidents_NormalizesPageAndLimit(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()

	// Ожидания: нулевые значения заменяются умолчаниями до похода в БД
	repoMock.EXPECT().
		ListIncidents(ctx, models.IncidentFilter{Page: 1, Limit: 10}).
		Return([]*models.Incident{}, 0, nil).
		Times(1)

	// Действие
	page, err := service.ListIncidents(ctx, caller, models.IncidentFilter{Page: 0, Limit: 0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListIncidents_PageBeyondRange(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()

	// Ожидания: всего 5 записей, окно третьей страницы пустое
	repoMock.EXPECT().
		ListIncidents(ctx, models.IncidentFilter{Page: 3, Limit: 10}).
		Return([]*models.Incident{}, 5, nil).
		Times(1)

	// Действие
	page, err := service.ListIncidents(ctx, caller, models.IncidentFilter{Page: 3, Limit: 10})

	// Проверки: пустое окно - не ошибка
	require.NoError(t, err)
	assert.Empty(t, page.Incidents)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListIncidents_Unauthenticated(t *testing.T) {
	// Подготовка
	service, _, _, _ := newTestIncidentService(t)
	ctx := context.Background()

	// Действие
	page, err := service.ListIncidents(ctx, nil, models.IncidentFilter{})

	// Проверки
	require.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestDeleteIncident_ByOwner(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()
	existing := &models.Incident{
		ID:         incidentID,
		ReportedBy: models.UserSnapshot{ID: caller.ID, Name: caller.Name, Email: caller.Email},
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(existing, nil).Times(1)
	repoMock.EXPECT().Delete(ctx, incidentID).Return(nil).Times(1)
	repoMock.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	err := service.DeleteIncident(ctx, caller, incidentID)

	// Проверки
	require.NoError(t, err)
}

func TestDeleteIncident_ByOfficialAndAdmin(t *testing.T) {
	for _, caller := range []*models.User{official(), admin()} {
		t.Run(caller.Role, func(t *testing.T) {
			// Подготовка
			service, repoMock, _, _ := newTestIncidentService(t)
			ctx := context.Background()
			incidentID := uuid.New()
			existing := &models.Incident{
				ID:         incidentID,
				ReportedBy: models.UserSnapshot{Email: "someone-else@example.com"},
			}

			// Ожидания
			repoMock.EXPECT().GetByID(ctx, incidentID).Return(existing, nil).Times(1)
			repoMock.EXPECT().Delete(ctx, incidentID).Return(nil).Times(1)
			repoMock.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

			// Действие
			err := service.DeleteIncident(ctx, caller, incidentID)

			// Проверки
			require.NoError(t, err)
		})
	}
}

func TestDeleteIncident_ForbiddenForNonOwner(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()
	existing := &models.Incident{
		ID:         incidentID,
		ReportedBy: models.UserSnapshot{Email: "someone-else@example.com"},
	}

	// Ожидания: запись существует, но Delete не вызывается
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(existing, nil).Times(1)
	repoMock.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	err := service.DeleteIncident(ctx, caller, incidentID)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteIncident_NotFoundBeforeForbidden(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter() // не владелец и не official
	incidentID := uuid.New()

	// Ожидания: несуществующая запись дает not-found, а не forbidden
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(nil, apperr.NotFound("incident with id %s", incidentID)).Times(1)

	// Действие
	err := service.DeleteIncident(ctx, caller, incidentID)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateStatus_ByOfficial(t *testing.T) {
	// Подготовка
	service, repoMock, _, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	caller := official()
	incidentID := uuid.New()
	existing := &models.Incident{ID: incidentID, Title: "Bus collision", Status: models.StatusPending}
	updated := &models.Incident{
		ID:        incidentID,
		Title:     "Bus collision",
		Status:    models.StatusInProgress,
		UpdatedBy: &models.UserSnapshot{ID: caller.ID, Name: caller.Name, Email: caller.Email},
	}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(existing, nil).Times(1)
	repoMock.EXPECT().
		UpdateStatus(ctx, incidentID, models.StatusInProgress, caller.Snapshot()).
		Return(nil).
		Times(1)
	repoMock.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(updated, nil).Times(1)
	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		Do(func(ctx context.Context, event webhook.WebhookEvent) {
			assert.Equal(t, webhook.EventIncidentStatusChanged, event.Event)
			assert.Equal(t, models.StatusInProgress, event.Status)
		}).Return(nil).Times(1)

	// Действие
	result, err := service.UpdateStatus(ctx, caller, incidentID, models.StatusInProgress)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, result.UpdatedBy)
	assert.Equal(t, caller.Email, result.UpdatedBy.Email)
	assert.Equal(t, models.StatusInProgress, result.Status)
}

func TestUpdateStatus_ForbiddenForNonOfficial(t *testing.T) {
	// Роль official требуется буквально: ни user, ни admin не проходят
	for _, caller := range []*models.User{reporter(), admin()} {
		t.Run(caller.Role, func(t *testing.T) {
			// Подготовка
			service, repoMock, _, _ := newTestIncidentService(t)
			ctx := context.Background()

			// Ожидания: до репозитория дело не доходит
			repoMock.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			// Действие
			result, err := service.UpdateStatus(ctx, caller, uuid.New(), models.StatusResolved)

			// Проверки
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := official()

	// Ожидания: запись не трогается
	repoMock.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие: значение вне фиксированного набора
	result, err := service.UpdateStatus(ctx, caller, uuid.New(), "archived")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateStatus_MissingStatus(t *testing.T) {
	// Подготовка
	service, _, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := official()

	// Действие
	_, err := service.UpdateStatus(ctx, caller, uuid.New(), "")

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateStatus_MissingID(t *testing.T) {
	// Подготовка
	service, _, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := official()

	// Действие
	_, err := service.UpdateStatus(ctx, caller, uuid.Nil, models.StatusResolved)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddComment_Success(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()
	existing := &models.Incident{ID: incidentID}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(existing, nil).Times(1)
	repoMock.EXPECT().
		AddComment(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, c *models.Comment) error {
			assert.Equal(t, caller.Name, c.AuthorName)
			assert.Equal(t, caller.Email, c.AuthorEmail)
			c.ID = uuid.New()
			return nil
		}).Times(1)
	repoMock.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(&models.Incident{
			ID: incidentID,
			Comments: []models.Comment{
				{Content: "Видел это сегодня утром", AuthorEmail: caller.Email},
			},
		}, nil).
		Times(1)

	// Действие
	comments, err := service.AddComment(ctx, caller, incidentID, "Видел это сегодня утром")

	// Проверки
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, caller.Email, comments[0].AuthorEmail)
}

func TestAddComment_EmptyContent(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()

	// Ожидания
	repoMock.EXPECT().AddComment(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	comments, err := service.AddComment(ctx, caller, uuid.New(), "   ")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, comments)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddComment_IncidentNotFound(t *testing.T) {
	// Подготовка
	service, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	caller := reporter()
	incidentID := uuid.New()

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(nil, apperr.NotFound("incident with id %s", incidentID)).Times(1)

	// Действие
	comments, err := service.AddComment(ctx, caller, incidentID, "text")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, comments)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
