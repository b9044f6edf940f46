package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/config"
	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/internal/service"
)

// NewPublisher builds the prediction publisher enabled in config. Kafka wins when
// both brokers are enabled; with neither, predictions are not published.
func NewPublisher(kafkaCfg config.KafkaConfig, amqpCfg config.AMQPConfig, logger zerolog.Logger) (service.Publisher, error) {
	switch {
	case kafkaCfg.Enabled:
		return NewKafkaPublisher(KafkaPublisherConfig{
			Brokers: kafkaCfg.Brokers,
			Topic:   kafkaCfg.Topic,
		}, logger), nil
	case amqpCfg.Enabled:
		publisher, err := NewAMQPPublisher(AMQPPublisherConfig{
			URL:        amqpCfg.URL,
			Exchange:   amqpCfg.Exchange,
			RoutingKey: amqpCfg.RoutingKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	}
	return NopPublisher{}, nil
}

// NopPublisher drops every batch
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.PredictionBatch) error { return nil }

func (NopPublisher) Close() error { return nil }

func encodeBatch(batch *models.PredictionBatch) ([]byte, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction batch: %w", err)
	}
	return data, nil
}
