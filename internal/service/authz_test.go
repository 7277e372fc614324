package service

import (
	"testing"

	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/shenikar/transport_incident_system/internal/models"
	"github.com/stretchr/testify/assert"
)

// Матрица доступа: операция x вызывающий. Владелец определяется по email
// в снимке reported_by.
func TestAuthorizeMatrix(t *testing.T) {
	owner := &models.User{Name: "Owner", Email: "owner@example.com", Role: models.RoleUser}
	stranger := &models.User{Name: "Stranger", Email: "stranger@example.com", Role: models.RoleUser}
	off := &models.User{Name: "Official", Email: "official@example.com", Role: models.RoleOfficial}
	adm := &models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	incident := &models.Incident{
		ReportedBy: models.UserSnapshot{Email: owner.Email},
	}

	tests := []struct {
		name    string
		op      Operation
		caller  *models.User
		allowed bool
	}{
		{"read by user", OpRead, stranger, true},
		{"create by user", OpCreate, stranger, true},
		{"comment by user", OpComment, stranger, true},

		{"delete by owner", OpDelete, owner, true},
		{"delete by official", OpDelete, off, true},
		{"delete by admin", OpDelete, adm, true},
		{"delete by stranger", OpDelete, stranger, false},

		{"status update by official", OpUpdateStatus, off, true},
		{"status update by admin", OpUpdateStatus, adm, false},
		{"status update by owner", OpUpdateStatus, owner, false},
		{"status update by stranger", OpUpdateStatus, stranger, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorize(tt.op, tt.caller, incident)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			}
		})
	}
}

func TestAuthorize_NilCallerIsUnauthenticated(t *testing.T) {
	for _, op := range []Operation{OpRead, OpCreate, OpDelete, OpUpdateStatus, OpComment} {
		t.Run(string(op), func(t *testing.T) {
			err := authorize(op, nil, nil)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestAuthorize_OwnershipNeedsIncident(t *testing.T) {
	owner := &models.User{Email: "owner@example.com", Role: models.RoleUser}

	// Без записи владение проверить нечем - доступ закрыт
	err := authorize(OpDelete, owner, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
