package config

import (
	"errors"
	"fmt"
)

// Драйверы хранилища.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// ErrUnknownStorageDriver возвращается для неподдерживаемого драйвера хранилища.
var ErrUnknownStorageDriver = errors.New("unknown storage driver")

// StorageConfig выбирает реализацию хранилищ событий и проекции.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"IDENTITY_STORAGE_DRIVER" env-default:"postgres"`
}

// Validate проверяет драйвер хранилища.
func (s *StorageConfig) Validate() error {
	switch s.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, s.Driver)
	}
}
