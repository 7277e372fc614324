package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/shenikar/transport_incident_system/internal/config"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes регистрирует все маршруты API v1.
// Все операции над инцидентами требуют аутентификации, включая чтение списка.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, cfg *config.Config, log *logrus.Logger) {
	incidents := api.Group("/incidents")
	incidents.Use(JWTAuthMiddleware(cfg, log))
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PATCH("/:id/status", h.updateStatus)
		incidents.DELETE("/:id", h.deleteIncident)
		incidents.POST("/:id/comments", h.addComment)
	}

	// Маршрут Health-check, без аутентификации
	api.GET("/system/health", h.healthCheck)
}
