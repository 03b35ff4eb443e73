package persistence

import (
	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/session"
	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence/models"
)

func toDomainUser(row *models.User) *user.User {
	return &user.User{
		ID:           row.ID,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		PasswordHash: row.PasswordHash,
		Role:         user.Role(row.Role),
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toDBUser(u *user.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainSession(row *models.Session) *session.Session {
	return &session.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		IP:        row.IP,
		UserAgent: row.UserAgent,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
}

func toDomainAuthLog(row *models.AuthenticationLog) *authlog.AuthenticationLog {
	return &authlog.AuthenticationLog{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     row.Email,
		IP:        row.IP,
		UserAgent: row.UserAgent,
		Success:   row.Success,
		CreatedAt: row.CreatedAt,
	}
}
