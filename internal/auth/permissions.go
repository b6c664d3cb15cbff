package auth

import (
	"context"

	"jobboard_backend/internal/models"
)

const (
	PermJobsWrite          = "jobs:write"
	PermApplicationsCreate = "applications:create"
	PermApplicationsReview = "applications:review"
)

// Permissions - права по ролям
var Permissions = map[models.UserRole][]string{
	models.UserRoleCreator: {
		PermJobsWrite,
		PermApplicationsReview,
	},
	models.UserRoleEmployee: {
		PermApplicationsCreate,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Identity - проверенный пользователь текущего запроса
type Identity struct {
	UserID string
	Role   models.UserRole
}

func (i Identity) Can(permission string) bool {
	return HasPermission(i.Role, permission)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentUser возвращает пользователя из контекста; ok=false - запрос анонимный
func CurrentUser(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
