package session

import (
	"context"
	"encoding/json"

	"obuv/internal/domain"
)

// Authenticator выполняет вход на сервере и возвращает токен с данными
// пользователя
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, domain.User, error)
}

// Store владеет текущим сеансом и синхронизирует его с долговременным
// хранилищем. Гостевой сеанс не сохраняется и требует повторного входа
// после перезапуска.
type Store struct {
	storage Storage
	auth    Authenticator
	current domain.Session
}

func NewStore(storage Storage, auth Authenticator) *Store {
	return &Store{storage: storage, auth: auth}
}

// Restore читает сохранённые слоты. Отсутствие любого из них — не
// ошибка, возвращается пустой сеанс.
func (s *Store) Restore() domain.Session {
	token, okToken := s.storage.Get(KeyToken)
	raw, okUser := s.storage.Get(KeyUser)
	if !okToken || !okUser {
		s.current = domain.Session{}
		return s.current
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.current = domain.Session{}
		return s.current
	}

	s.current = domain.Session{Token: token, User: user}
	return s.current
}

// Login проверяет учётные данные на сервере и сохраняет оба слота,
// чтобы перезапуск восстановил сеанс без повторного входа
func (s *Store) Login(ctx context.Context, username, password string) (domain.Session, error) {
	token, user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		return domain.Session{}, err
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return domain.Session{}, err
	}

	s.current = domain.Session{Token: token, User: user}
	return s.current, nil
}

// EnterAsGuest создаёт гостевой сеанс без обращения к серверу
func (s *Store) EnterAsGuest() domain.Session {
	s.current = domain.Session{
		User: domain.User{Role: domain.RoleGuest, FullName: "Гость"},
	}
	return s.current
}

// Logout очищает оба слота и текущий сеанс
func (s *Store) Logout() error {
	if err := s.storage.Delete(KeyToken); err != nil {
		return err
	}
	if err := s.storage.Delete(KeyUser); err != nil {
		return err
	}
	s.current = domain.Session{}
	return nil
}

func (s *Store) Current() domain.Session { return s.current }

// Token источник bearer-токена для API-клиента
func (s *Store) Token() string { return s.current.Token }
