// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort from the caller's point of view: a failed publish is logged
// and never fails the originating request.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jogardn/hoodie-store/internal/circuitbreaker"
	"github.com/jogardn/hoodie-store/pkg/models"
)

const (
	OrderCreatedTopic       = "order.created"
	OrderStatusChangedTopic = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
	EventTime   time.Time       `json:"event_time"`
}

type OrderStatusChangedEvent struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	OrderStatus models.OrderStatus `json:"order_status"`
	EventTime   time.Time          `json:"event_time"`
}

type Producer struct {
	producer sarama.SyncProducer
	breaker  *circuitbreaker.CircuitBreaker
	logger   *logrus.Logger
}

func NewProducer(brokers string, logger *logrus.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer([]string{brokers}, config)
	if err != nil {
		return nil, err
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:        "kafka-producer",
		MaxFailures: 5,
		Timeout:     30 * time.Second,
		MaxRequests: 1,
	}, logger)

	return &Producer{
		producer: producer,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

func (p *Producer) PublishOrderCreated(order *models.Order) error {
	event := OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
		EventTime:   time.Now(),
	}
	return p.publish(OrderCreatedTopic, order.ID, event)
}

func (p *Producer) PublishOrderStatusChanged(order *models.Order) error {
	event := OrderStatusChangedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		OrderStatus: order.OrderStatus,
		EventTime:   time.Now(),
	}
	return p.publish(OrderStatusChangedTopic, order.ID, event)
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	return p.breaker.Execute(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			p.logger.WithError(err).WithField("topic", topic).Error("Failed to send message to Kafka")
			return err
		}

		p.logger.WithFields(logrus.Fields{
			"topic":     topic,
			"partition": partition,
			"offset":    offset,
			"order_id":  key,
		}).Info("Event published to Kafka")

		return nil
	})
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
