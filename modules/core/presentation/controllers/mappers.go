package controllers

import (
	"time"

	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/domain/entities/authlog"
	"github.com/partsdesk/partsdesk/modules/core/presentation/controllers/dtos"
)

func toUserResponse(u *user.User) *dtos.UserResponse {
	return &dtos.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toAuthLogResponse(entry *authlog.AuthenticationLog) *dtos.AuthLogResponse {
	resp := &dtos.AuthLogResponse{
		ID:        entry.ID,
		Email:     entry.Email,
		IP:        entry.IP,
		UserAgent: entry.UserAgent,
		Success:   entry.Success,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.UserID != nil {
		resp.UserID = entry.UserID.String()
	}
	return resp
}
