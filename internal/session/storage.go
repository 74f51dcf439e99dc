package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Ключи двух долговременных слотов, один в один с веб-версией
const (
	KeyToken = "authToken"
	KeyUser  = "currentUser"
)

// Storage долговременное хранилище ключ-значение для данных сеанса
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage хранит каждый слот отдельным файлом в каталоге состояния
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *FileStorage) Get(key string) (string, bool) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (f *FileStorage) Set(key, value string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), []byte(value), 0o600)
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
