package dtos

import (
	"context"
)

type CreateUserDTO struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=admin data_manager"`
}

func (d *CreateUserDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type UpdateUserDTO struct {
	FirstName string `json:"firstName" validate:"omitempty"`
	LastName  string `json:"lastName" validate:"omitempty"`
	Role      string `json:"role" validate:"omitempty,oneof=admin data_manager"`
}

func (d *UpdateUserDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

type SetActiveDTO struct {
	Active *bool `json:"active" validate:"required"`
}

func (d *SetActiveDTO) Ok(_ context.Context) (map[string]string, bool) {
	return validationErrors(d)
}

// Query DTOs are decoded from list endpoints' query strings by the
// shared form decoder.

type UserListQuery struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type AuthLogQuery struct {
	Email   string `form:"email"`
	Success *bool  `form:"success"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

type AuthLogResponse struct {
	ID        uint   `json:"id"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	Success   bool   `json:"success"`
	CreatedAt string `json:"createdAt"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}
