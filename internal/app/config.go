package app

import "time"

// StorageDriver выбирает реализацию долговременного хранилища заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// CacheDriver выбирает реализацию кэша счётчиков.
type CacheDriver string

const (
	CacheDriverMemory CacheDriver = "memory"
	CacheDriverRedis  CacheDriver = "redis"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес API-сервера приёма заказов.
	HTTPAddr string
	// MetricsAddr — адрес сервера метрик и health-проверок.
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	CacheDriver   CacheDriver
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// CounterTTL — время жизни ключа счётчика в кэше. Счётчик суточный,
	// поэтому TTL больше суток достаточен; после истечения значение
	// восстановится fallback-сканом хранилища.
	CounterTTL time.Duration

	// Timezone — фиксированная локальная таймзона, по которой считается
	// календарный день scope.
	Timezone string

	// PersistRetryDelay — пауза между попытками записи заказа.
	PersistRetryDelay time.Duration

	// KafkaBrokers — опциональный список брокеров для публикации событий.
	// Пустой список отключает публикацию.
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые настройки: in-memory хранилища,
// таймзона исходного деплоя, стандартные адреса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		CacheDriver:         CacheDriverMemory,
		RedisAddr:           "localhost:6379",
		RedisDB:             0,
		CounterTTL:          48 * time.Hour,
		Timezone:            "Asia/Jakarta",
		PersistRetryDelay:   100 * time.Millisecond,
	}
}
