package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/transport_incident_system/internal/config"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/shenikar/transport_incident_system/internal/service"
	"github.com/shenikar/transport_incident_system/pkg/filestore"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
	photos          *filestore.FileStore
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config, photos *filestore.FileStore) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
		photos:          photos,
	}
}

// @Summary Create a new incident
// @Description Create a new transport incident report. The reporter snapshot is taken from the caller's identity. Accepts JSON or multipart form with an optional photo.
// @Tags Incidents
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if isMultipart {
		if err := c.ShouldBind(&input); err != nil {
			log.WithError(err).Warn("Failed to bind form")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			log.WithError(err).Warn("Failed to bind JSON")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToIncidentModel(input)

	if isMultipart {
		if file, err := c.FormFile("photo"); err == nil {
			src, err := file.Open()
			if err != nil {
				log.WithError(err).Error("Failed to open uploaded photo")
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo upload"})
				return
			}
			defer src.Close()

			url, err := h.photos.Save(file.Filename, file.Size, src)
			if err != nil {
				log.WithError(err).Warn("Failed to store uploaded photo")
				c.JSON(http.StatusBadRequest, gin.H{"error": "photo upload rejected"})
				return
			}
			model.PhotoURL = url
		}
	}

	if err := h.incidentService.CreateIncident(c.Request.Context(), currentUser(c), model); err != nil {
		log.WithError(err).Warn("Failed to create incident in service")
		resolveError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents, optionally filtered by a case-insensitive search over title, description, location and type.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Param search query string false "Free-text search term"
// @Success 200 {object} IncidentListResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := models.IncidentFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.incidentService.ListIncidents(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		resolveError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToListResponse(result))
}

// @Summary Get incident by ID
// @Description Get a single incident with its comment feed.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), currentUser(c), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		resolveError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Update incident status
// @Description Transition an incident to one of the fixed statuses: pending, in_progress, resolved, rejected. Officials only.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID, request body or status value"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not an official"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(), currentUser(c), id, input.Status)
	if err != nil {
		log.WithError(err).Warn("Failed to update incident status in service")
		resolveError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Delete an incident
// @Description Delete an incident. Allowed for the reporter of the record and for official/admin roles.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is neither owner nor elevated"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	if err := h.incidentService.DeleteIncident(c.Request.Context(), currentUser(c), id); err != nil {
		log.WithError(err).Warn("Failed to delete incident in service")
		resolveError(c, log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Add a comment to an incident
// @Description Append a comment to the incident's feed. The feed is append-only.
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param comment body AddCommentRequest true "Comment"
// @Success 201 {array} CommentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or empty content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/comments [post]
func (h *Handler) addComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "addComment").WithField("id", id)

	var input AddCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := h.incidentService.AddComment(c.Request.Context(), currentUser(c), id, input.Content)
	if err != nil {
		log.WithError(err).Warn("Failed to add comment in service")
		resolveError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelsToCommentResponses(comments))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
