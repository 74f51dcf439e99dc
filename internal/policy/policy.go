// Package policy выводит права доступа из роли текущего сеанса.
// Все функции чистые и тотальные: пустой сеанс равносилен гостевому.
package policy

import "obuv/internal/domain"

func IsAdmin(s domain.Session) bool {
	return s.User.Role == domain.RoleAdmin
}

func IsManagerOrAdmin(s domain.Session) bool {
	return s.User.Role == domain.RoleManager || s.User.Role == domain.RoleAdmin
}

// CanFilterProducts гость видит список без поиска и фильтров
func CanFilterProducts(s domain.Session) bool {
	return IsManagerOrAdmin(s)
}

// CanViewOrders экран заказов доступен менеджеру и администратору
func CanViewOrders(s domain.Session) bool {
	return IsManagerOrAdmin(s)
}
