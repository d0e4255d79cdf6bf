package app

import (
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-intake/internal/storage/postgres"
)

// Dependencies содержит подключённые хранилища и producer приложения.
type Dependencies struct {
	SequenceCache domain.SequenceCache
	RecordStore   domain.RecordStore
	Producer      *kafka.Producer

	redisClient *goredis.Client
	pgStore     *postgres.Store
}

// Close освобождает все удерживаемые подключения.
func (d *Dependencies) Close(logger *log.Entry) {
	if d == nil {
		return
	}
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
