package service

import (
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/models"
)

// Operation - операция над инцидентом, проверяемая перед выполнением
type Operation string

const (
	OpRead         Operation = "read"
	OpCreate       Operation = "create"
	OpDelete       Operation = "delete"
	OpUpdateStatus Operation = "update_status"
	OpComment      Operation = "comment"
)

// authzRule - правило доступа для одной операции
type authzRule struct {
	// anyAuthenticated - операция доступна любому аутентифицированному вызывающему
	anyAuthenticated bool
	// roles - роли, которым операция доступна независимо от владения записью
	roles map[string]bool
	// ownerAllowed - операция доступна владельцу записи (по email в reported_by)
	ownerAllowed bool
}

// policy - единая таблица авторизации. Все проверки доступа ходят через нее,
// чтобы набор ролей для каждой операции был задан ровно в одном месте.
// Удаление разрешено владельцу, official и admin; смена статуса - только
// official, без исключения для admin и владельца.
var policy = map[Operation]authzRule{
	OpRead:    {anyAuthenticated: true},
	OpCreate:  {anyAuthenticated: true},
	OpComment: {anyAuthenticated: true},
	OpDelete: {
		roles:        map[string]bool{models.RoleOfficial: true, models.RoleAdmin: true},
		ownerAllowed: true,
	},
	OpUpdateStatus: {
		roles: map[string]bool{models.RoleOfficial: true},
	},
}

// authorize решает, может ли вызывающий выполнить операцию.
// incident передается только для операций с проверкой владения,
// для остальных допустим nil.
func authorize(op Operation, caller *models.User, incident *models.Incident) error {
	if caller == nil {
		return apperr.ErrUnauthenticated
	}

	rule, ok := policy[op]
	if !ok {
		return apperr.Forbidden("operation %s is not permitted", op)
	}

	if rule.anyAuthenticated {
		return nil
	}
	if rule.roles[caller.Role] {
		return nil
	}
	if rule.ownerAllowed && incident != nil && caller.Email == incident.ReportedBy.Email {
		return nil
	}

	return apperr.Forbidden("%s is not permitted for this caller", op)
}
