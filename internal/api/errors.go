package api

import "fmt"

// AuthError неверные учётные данные при входе
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RequestError любой не-2xx ответ сервера. Detail берётся из тела
// ответа вида {"detail": "..."}, иначе подставляется общий текст.
type RequestError struct {
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string { return e.Detail }

// NetworkError сбой транспорта до получения ответа. Пользователю
// показывается так же, как RequestError.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("сервер недоступен: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
