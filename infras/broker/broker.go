// Package broker picks the domain event publisher from EVENTS_DRIVER.
package broker

import (
	"pms/config"
	"pms/infras/kafka"
	"pms/infras/otel"
	"pms/infras/rabbitmq"
	"pms/shared/events"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverNone     = "none"
)

// New never fails: an unreachable broker degrades to the no-op publisher so
// reservations keep working while events are dropped.
func New(cfg *config.Config, otl otel.Otel) events.Publisher {
	driver := strings.ToLower(cfg.Events.Driver)

	switch driver {
	case DriverKafka:
		return kafka.New(cfg, otl)
	case DriverRabbitMQ:
		publisher, err := rabbitmq.New(cfg, otl)
		if err != nil {
			log.Error().Err(err).Msg("RabbitMQ unavailable, domain events are dropped")

			return events.NewNoop()
		}

		return publisher
	case "", DriverNone:
		log.Info().Msg("No events driver configured, domain events are dropped")

		return events.NewNoop()
	default:
		log.Warn().Str("driver", driver).Msg("Unknown events driver, domain events are dropped")

		return events.NewNoop()
	}
}
