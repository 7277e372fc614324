package v1

import "github.com/shenikar/transport_incident_system/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:           dto.Title,
		LocationAddress: dto.LocationAddress,
		Type:            dto.Type,
		Severity:        dto.Severity,
		Description:     dto.Description,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:              model.ID,
		Title:           model.Title,
		LocationAddress: model.LocationAddress,
		Type:            model.Type,
		Severity:        model.Severity,
		Description:     model.Description,
		PhotoURL:        model.PhotoURL,
		Status:          model.Status,
		ReportedBy: UserSnapshotResponse{
			ID:    model.ReportedBy.ID,
			Name:  model.ReportedBy.Name,
			Email: model.ReportedBy.Email,
		},
		Comments:  ModelsToCommentResponses(model.Comments),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.UpdatedBy != nil {
		resp.UpdatedBy = &UserSnapshotResponse{
			ID:    model.UpdatedBy.ID,
			Name:  model.UpdatedBy.Name,
			Email: model.UpdatedBy.Email,
		}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelsToCommentResponses преобразует ленту комментариев в DTO
func ModelsToCommentResponses(comments []models.Comment) []CommentResponse {
	if len(comments) == 0 {
		return nil
	}
	responses := make([]CommentResponse, len(comments))
	for i, c := range comments {
		responses[i] = CommentResponse{
			ID:          c.ID,
			Content:     c.Content,
			AuthorName:  c.AuthorName,
			AuthorEmail: c.AuthorEmail,
			CreatedAt:   c.CreatedAt,
		}
	}
	return responses
}

// ModelToListResponse преобразует страницу выборки в DTO
func ModelToListResponse(page *models.IncidentPage) *IncidentListResponse {
	return &IncidentListResponse{
		Incidents:  ModelsToIncidentResponses(page.Incidents),
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}
}
