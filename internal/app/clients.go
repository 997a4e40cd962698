package app

import (
	"os"
	"strings"

	"github.com/mcreview/mcreview-backend/internal/clients/redis"
	"github.com/mcreview/mcreview-backend/internal/logger"
)

type Clients struct {
	EventBus redis.EventBus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var bus redis.EventBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.NewEventBus(log)
		if err != nil {
			return Clients{}, err
		}
		bus = b
	} else {
		log.Warn("REDIS_ADDR not set, package events will not be published")
	}

	return Clients{EventBus: bus}, nil
}
