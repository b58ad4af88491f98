// Package authz содержит предикаты авторизации, применяемые к паре
// (действующий пользователь, владелец ресурса). Обработчики и сервисы
// комбинируют их вместо ветвлений по типу ресурса.
package authz

import "github.com/magabrotheeeer/billing-service/internal/models"

// Actor минимальные сведения о пользователе из JWT, нужные для проверки прав.
type Actor struct {
	UserUID  string
	Username string
	Role     string
}

// IsAdmin разрешает действие только администратору.
func IsAdmin(actor Actor) bool {
	return actor.Role == models.RoleAdmin
}

// OwnerOrAdmin разрешает действие владельцу ресурса или администратору.
func OwnerOrAdmin(actor Actor, ownerUID string) bool {
	return actor.UserUID == ownerUID || IsAdmin(actor)
}
