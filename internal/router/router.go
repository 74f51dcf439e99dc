// Package router переключает экраны приложения и разводит намерения
// пользователя по обработчикам. Состояние сеанса и кэшей живёт в
// явных объектах, а не в глобальных переменных.
package router

import (
	"context"
	"fmt"

	"obuv/internal/domain"
	"obuv/internal/policy"
)

// Screen экран верхнего уровня; активен ровно один
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenProducts
	ScreenOrders
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenProducts:
		return "products"
	case ScreenOrders:
		return "orders"
	}
	return "unknown"
}

// Intent намерение пользователя, независимое от способа ввода
type Intent string

const (
	IntentSubmitLogin   Intent = "submit-login"
	IntentEnterGuest    Intent = "enter-guest"
	IntentLogout        Intent = "logout"
	IntentSubmitProduct Intent = "submit-product"
	IntentDeleteProduct Intent = "delete-product"
	IntentSubmitOrder   Intent = "submit-order"
	IntentDeleteOrder   Intent = "delete-order"
	IntentNavigate      Intent = "navigate"
)

// Handler обработчик намерения; args зависит от намерения
type Handler func(ctx context.Context, args any) error

// SessionSource текущий сеанс для проверок доступа
type SessionSource func() domain.Session

// App машина экранов {вход, товары, заказы} с таблицей обработчиков
type App struct {
	session SessionSource

	// Notify показывает блокирующее уведомление пользователю
	Notify func(msg string)

	screen   Screen
	loaders  map[Screen]func(ctx context.Context) error
	handlers map[Intent]Handler
}

func New(session SessionSource) *App {
	return &App{
		session:  session,
		screen:   ScreenLogin,
		loaders:  make(map[Screen]func(ctx context.Context) error),
		handlers: make(map[Intent]Handler),
	}
}

// Current активный экран
func (a *App) Current() Screen { return a.screen }

// SetLoader регистрирует загрузку экрана; выполняется при каждом входе
func (a *App) SetLoader(s Screen, fn func(ctx context.Context) error) {
	a.loaders[s] = fn
}

// Handle регистрирует обработчик намерения
func (a *App) Handle(i Intent, h Handler) { a.handlers[i] = h }

// Dispatch выполняет обработчик намерения
func (a *App) Dispatch(ctx context.Context, i Intent, args any) error {
	h, ok := a.handlers[i]
	if !ok {
		return fmt.Errorf("нет обработчика для %q", i)
	}
	return h(ctx, args)
}

// Navigate переключает экран с проверкой прав. Отклонённый переход
// показывает уведомление и оставляет экран как был. Повторный вход на
// текущий экран заново выполняет его загрузку.
func (a *App) Navigate(ctx context.Context, target Screen) error {
	switch target {
	case ScreenProducts:
		if a.session().Empty() {
			return a.enter(ctx, ScreenLogin)
		}
	case ScreenOrders:
		if !policy.CanViewOrders(a.session()) {
			a.notify("У вас нет прав для просмотра заказов")
			return nil
		}
	}
	return a.enter(ctx, target)
}

func (a *App) enter(ctx context.Context, s Screen) error {
	a.screen = s
	if load, ok := a.loaders[s]; ok {
		return load(ctx)
	}
	return nil
}

func (a *App) notify(msg string) {
	if a.Notify != nil {
		a.Notify(msg)
	}
}
